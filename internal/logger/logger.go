// 包 logger：三个命令共用的 slog 日志器；级别与格式由 LOG_LEVEL、LOG_FORMAT 控制
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup：初始化输出到标准错误的默认日志器
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// 文档注释：以 w 为输出目标初始化默认日志器
// 背景：构建过程的诊断行（如 gdp_unresolved）需要在测试中捕获并断言。
// 约束：LOG_LEVEL 接受 slog 级别名（debug/info/warn/error，可带偏移如 warn+2），无法识别时取 info；
// LOG_FORMAT=json 输出 JSON，其余为文本。
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

func levelFromEnv() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// L：默认日志器；未初始化时按环境变量初始化
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
