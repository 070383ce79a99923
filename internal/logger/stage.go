package logger

import (
	"log/slog"
	"time"
)

// Stage：包装流水线中的一个步骤并记录耗时与结果
// 背景：构建流程为单线程线性执行，逐步记录便于定位慢输入文件或失败步骤
// 约束：不吞掉错误；失败时以 error 级别记录后原样返回
func Stage(l *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	l.Debug("stage_begin", "stage", name)
	err := fn()
	dur := time.Since(start)
	if err != nil {
		l.Error("stage_error", "stage", name, "duration_ms", dur.Milliseconds(), "err", err)
		return err
	}
	l.Info("stage_done", "stage", name, "duration_ms", dur.Milliseconds())
	return nil
}
