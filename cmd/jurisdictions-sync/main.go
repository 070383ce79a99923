// 同步工具：读取已构建的 countries.json，写入 PostgreSQL 行政区表，并可选发布到 Redis
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"geodata/internal/cache"
	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
	"geodata/internal/migrate"
	"geodata/internal/pipeline"
	"geodata/internal/render"
	"geodata/internal/store"
	"geodata/internal/utils"
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
	doc, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		l.Error("document_read_error", "path", cfg.OutputPath, "err", err)
		os.Exit(1)
	}
	tree, err := render.ReadFile(cfg.OutputPath, cfg.OutputFormat)
	if err != nil {
		l.Error("document_decode_error", "path", cfg.OutputPath, "err", err)
		os.Exit(1)
	}
	l.Info("document_loaded", "countries", len(tree.Countries()), "jurisdictions", tree.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if v := os.Getenv("PG_SYNC"); v == "" || v == "true" {
		if err := syncPostgres(ctx, tree); err != nil {
			l.Error("pg_sync_error", "err", err)
			os.Exit(1)
		}
	} else {
		l.Info("pg_sync_skipped")
	}

	if os.Getenv("REDIS_PUBLISH") == "true" {
		rc := utils.OpenRedisFromEnv()
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			os.Exit(1)
		}
		if err := cache.Publish(ctx, rc, cache.NewPlan(tree, cache.PrefixFromEnv()), doc); err != nil {
			l.Error("redis_publish_error", "err", err)
			os.Exit(1)
		}
	} else {
		l.Debug("redis_publish_skipped")
	}
	l.Info("sync_done")
}

func syncPostgres(ctx context.Context, tree *jurisdiction.Tree) error {
	l := logger.L()
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		return err
	}
	st := store.AttachDB(db)
	buildID := uuid.NewString()
	if _, err := st.Sync(ctx, tree, buildID); err != nil {
		return err
	}
	if countries, total, err := st.Count(ctx); err == nil {
		l.Info("pg_rows", "countries", countries, "jurisdictions", total)
	}
	return nil
}
