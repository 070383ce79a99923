// 包 pipeline：串联地理层级构建、三类统计合并与文档输出的线性构建流程
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
	"geodata/internal/merge"
	"geodata/internal/render"
)

// Result：构建结果，含最终树与各来源合并报告（按执行顺序）
type Result struct {
	Tree    *jurisdiction.Tree
	Reports []merge.Report
}

// 文档注释：执行一次完整构建
// 背景：单线程顺序执行：读取全部输入 -> 构建树与索引 -> 人口（国家、子区）-> 年龄中位数 -> GDP -> 写出文档。
// 约束：所有输入先读取并解析完毕再开始合并；ctx 仅在步骤之间检查，不中断单个步骤。
// 约束：子区人口路径为空时跳过该来源；子区所属国家不在全局索引中时记录 warn 并跳过。
// 异常：任一致命错误（输入缺失/不可解析、缺少 name、写出失败）立即返回，不写出任何文档。
func Run(ctx context.Context, c Config) (*Result, error) {
	l := logger.L()
	l.Info("pipeline_start", "geo", c.GeographyPath, "output", c.OutputPath, "format", string(c.OutputFormat))
	res, err := Enrich(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := logger.Stage(l, "write_output", func() error {
		return render.WriteFile(c.OutputPath, res.Tree, c.OutputFormat)
	}); err != nil {
		return nil, err
	}
	l.Info("pipeline_done", "countries", len(res.Tree.Countries()), "jurisdictions", res.Tree.Len())
	return res, nil
}

// Enrich：执行除写出外的全部步骤，返回已合并统计的树
func Enrich(ctx context.Context, c Config) (*Result, error) {
	l := logger.L()
	var (
		geo    []jurisdiction.Record
		pop    merge.Records
		subPop merge.Records
		age    merge.Records
		gdp    *merge.Table
	)
	err := logger.Stage(l, "read_inputs", func() error {
		var err error
		if geo, err = readFile(c.GeographyPath, jurisdiction.DecodeGeography); err != nil {
			return err
		}
		if pop, err = readFile(c.PopulationPath, merge.DecodeRecords); err != nil {
			return err
		}
		if c.SubdivisionPopulationPath != "" {
			if subPop, err = readFile(c.SubdivisionPopulationPath, merge.DecodeRecords); err != nil {
				return err
			}
		}
		if age, err = readFile(c.MedianAgePath, merge.DecodeRecords); err != nil {
			return err
		}
		gdp, err = readFile(c.GDPPath, merge.DecodeGDP)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if err := logger.Stage(l, "build_hierarchy", func() error {
		t, err := jurisdiction.Build(geo)
		if err != nil {
			return fmt.Errorf("%s: %w", c.GeographyPath, err)
		}
		res.Tree = t
		return nil
	}); err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		run  func() (merge.Report, error)
	}{
		{merge.SourcePopulation, func() (merge.Report, error) {
			return merge.Population(res.Tree, pop, c.PopulationYears), nil
		}},
		{merge.SourceSubdivisionPopulation, func() (merge.Report, error) {
			if c.SubdivisionPopulationPath == "" {
				return merge.Report{Source: merge.SourceSubdivisionPopulation}, nil
			}
			rep, err := merge.SubdivisionPopulation(res.Tree, c.SubdivisionCountry, subPop)
			if errors.Is(err, merge.ErrUnknownCountry) {
				l.Warn("subdivision_country_unknown", "country", c.SubdivisionCountry)
				return rep, nil
			}
			return rep, err
		}},
		{merge.SourceMedianAge, func() (merge.Report, error) {
			return merge.MedianAge(res.Tree, age), nil
		}},
		{merge.SourceGDPPerCapitaPPP, func() (merge.Report, error) {
			return merge.GDPPerCapitaPPP(res.Tree, gdp, c.GDPYears), nil
		}},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := logger.Stage(l, "merge_"+s.name, func() error {
			rep, err := s.run()
			if err != nil {
				return err
			}
			res.Reports = append(res.Reports, rep)
			l.Info("merge_report", "source", rep.Source, "records", rep.Records, "matched", rep.Matched,
				"written", rep.Written, "unresolved", len(rep.Unresolved), "skipped_cells", rep.SkippedCells)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// readFile：打开并解析单个输入文件；错误附带路径
func readFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
