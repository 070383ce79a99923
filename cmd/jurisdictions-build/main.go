// 构建工具：合并地理层级与人口、年龄中位数、人均 GDP 三类统计，输出 countries.json
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"geodata/internal/logger"
	"geodata/internal/metrics"
	"geodata/internal/pipeline"
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
	start := time.Now()
	res, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		l.Error("build_error", "err", err)
		os.Exit(1)
	}
	metrics.ObserveBuild(len(res.Tree.Countries()), res.Tree.Len(), time.Since(start))
	for _, r := range res.Reports {
		metrics.ObserveReport(r)
	}
	// 指标写入失败不影响已生成的数据文件
	if err := metrics.WriteTextfile(os.Getenv("METRICS_TEXTFILE")); err != nil {
		l.Error("metrics_write_error", "err", err)
	}
	l.Info("build_done", "output", cfg.OutputPath, "duration_ms", time.Since(start).Milliseconds())
}
