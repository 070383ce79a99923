// 包 cache：将构建结果发布到 Redis，供在线服务按名称、代码或别名快速定位行政区
package cache

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// Plan：待写入 Redis 的全部键值
type Plan struct {
	DocumentKey  string
	CountriesKey string
	// Hashes：哈希键 -> 查找键 -> 规范名称
	Hashes map[string]map[string]string
}

// PrefixFromEnv：REDIS_PREFIX，缺省为 geodata
func PrefixFromEnv() string {
	if p := os.Getenv("REDIS_PREFIX"); p != "" {
		return p
	}
	return "geodata"
}

// 文档注释：由树生成发布计划
// 背景：全局索引写入 <prefix>:index（键 -> 国家名），每个有子区的国家写入 <prefix>:index:<国家名>（键 -> 子区名）。
// 约束：索引内容与内存索引完全一致，包括键冲突时后写覆盖的结果。
func NewPlan(t *jurisdiction.Tree, prefix string) Plan {
	p := Plan{
		DocumentKey:  prefix + ":document",
		CountriesKey: prefix + ":countries",
		Hashes:       make(map[string]map[string]string),
	}
	p.Hashes[prefix+":index"] = names(t, t.Global())
	for _, h := range t.Countries() {
		local := t.Local(h)
		if len(local) == 0 {
			continue
		}
		p.Hashes[prefix+":index:"+t.Get(h).Name] = names(t, local)
	}
	return p
}

func names(t *jurisdiction.Tree, ix jurisdiction.Index) map[string]string {
	m := make(map[string]string, len(ix))
	for k, h := range ix {
		m[k] = t.Get(h).Name
	}
	return m
}

// 文档注释：发布文档与索引
// 背景：先读取上次发布登记的哈希键集合，在同一 MULTI/EXEC 中删除旧键并写入新键，读取方不会看到半新半旧的索引。
// 异常：Redis 命令失败直接返回 error。
func Publish(ctx context.Context, rc *redis.Client, p Plan, document []byte) error {
	old, err := rc.SMembers(ctx, p.CountriesKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	_, err = rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		stale := append([]string{p.CountriesKey, p.DocumentKey}, old...)
		pipe.Del(ctx, stale...)
		pipe.Set(ctx, p.DocumentKey, document, 0)
		for key, m := range p.Hashes {
			if len(m) == 0 {
				continue
			}
			vals := make(map[string]interface{}, len(m))
			for k, v := range m {
				vals[k] = v
			}
			pipe.HSet(ctx, key, vals)
			pipe.SAdd(ctx, p.CountriesKey, key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.L().Info("redis_publish_done", "hashes", len(p.Hashes), "document_bytes", len(document))
	return nil
}
