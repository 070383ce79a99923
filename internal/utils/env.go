// 包 utils：同步命令使用的 PostgreSQL 与 Redis 连接工具，参数全部来自环境变量
package utils

import (
	"os"
	"strconv"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt：未设置、无法解析或为负数时取 def
func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
