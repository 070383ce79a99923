package pipeline

import (
	"os"
	"path/filepath"
	"strconv"

	"geodata/internal/merge"
	"geodata/internal/render"
)

// Config：一次构建所需的输入、输出路径与扫描窗口
type Config struct {
	GeographyPath             string
	PopulationPath            string
	SubdivisionPopulationPath string
	SubdivisionCountry        string
	MedianAgePath             string
	GDPPath                   string
	OutputPath                string
	OutputFormat              render.Format
	PopulationYears           merge.YearRange
	GDPYears                  merge.YearRange
}

// DefaultConfig：以 dir 为数据目录的默认配置，文件名沿用既有数据集命名
func DefaultConfig(dir string) Config {
	return Config{
		GeographyPath:             filepath.Join(dir, "iso3166.json"),
		PopulationPath:            filepath.Join(dir, "populations.json"),
		SubdivisionPopulationPath: filepath.Join(dir, "us_state_populations.json"),
		SubdivisionCountry:        "USA",
		MedianAgePath:             filepath.Join(dir, "medianage.json"),
		GDPPath:                   filepath.Join(dir, "GDPperCapPPP.csv"),
		OutputPath:                filepath.Join(dir, "countries.json"),
		OutputFormat:              render.JSON,
		PopulationYears:           merge.DefaultPopulationYears,
		GDPYears:                  merge.DefaultGDPYears,
	}
}

// 文档注释：从环境变量读取配置
// 背景：与其它命令一致，所有参数均来自环境变量（可由 .env 注入）；未设置的项取 DATA_DIR 下的默认文件。
// 约束：年份变量解析失败时忽略并保留默认值；OUTPUT_FORMAT 非法时返回错误，未设置时按 OUTPUT_PATH 扩展名推断。
// SUBDIVISION_POPULATION_PATH 显式设为空串时关闭子区人口合并。
func ConfigFromEnv() (Config, error) {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	c := DefaultConfig(dir)
	setPath(&c.GeographyPath, "GEO_PATH")
	setPath(&c.PopulationPath, "POPULATION_PATH")
	if v, ok := os.LookupEnv("SUBDIVISION_POPULATION_PATH"); ok {
		c.SubdivisionPopulationPath = v
	}
	setPath(&c.MedianAgePath, "MEDIAN_AGE_PATH")
	setPath(&c.GDPPath, "GDP_PATH")
	setPath(&c.OutputPath, "OUTPUT_PATH")
	if v := os.Getenv("SUBDIVISION_COUNTRY"); v != "" {
		c.SubdivisionCountry = v
	}
	c.OutputFormat = render.FormatForPath(c.OutputPath)
	if v := os.Getenv("OUTPUT_FORMAT"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			return c, err
		}
		c.OutputFormat = f
	}
	setYear(&c.PopulationYears.Max, "POPULATION_YEAR_MAX")
	setYear(&c.PopulationYears.Min, "POPULATION_YEAR_MIN")
	setYear(&c.GDPYears.Max, "GDP_YEAR_MAX")
	setYear(&c.GDPYears.Min, "GDP_YEAR_MIN")
	return c, nil
}

func setPath(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setYear(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
