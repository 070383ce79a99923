// 覆盖检查工具：列出 MaxMind 国家库中出现、但数据集无法按代码解析的国家
package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"geodata/internal/coverage"
	"geodata/internal/logger"
	"geodata/internal/pipeline"
	"geodata/internal/render"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	cfg, err := pipeline.ConfigFromEnv()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	mmdb := os.Getenv("MMDB_PATH")
	if mmdb == "" {
		mmdb = filepath.Join("data", "mmdb", "GeoLite2-Country.mmdb")
	}
	tree, err := render.ReadFile(cfg.OutputPath, cfg.OutputFormat)
	if err != nil {
		l.Error("document_decode_error", "path", cfg.OutputPath, "err", err)
		os.Exit(1)
	}
	res, err := coverage.Check(tree, mmdb)
	if err != nil {
		l.Error("coverage_error", "mmdb", mmdb, "err", err)
		os.Exit(1)
	}
	if len(res.Missing) > 0 && os.Getenv("COVERAGE_STRICT") == "true" {
		os.Exit(2)
	}
}
