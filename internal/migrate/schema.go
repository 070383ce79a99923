package migrate

import (
	"context"
	"database/sql"

	"geodata/internal/logger"
)

// 背景：首次同步时自动创建行政区表、构建记录表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；国家行 parent_id 为 0，子区行指向其国家行 id
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _jurisdictions (
            id SERIAL PRIMARY KEY,
            parent_id INT NOT NULL DEFAULT 0,
            position INT NOT NULL DEFAULT 0,
            name TEXT NOT NULL,
            alpha2 TEXT NOT NULL DEFAULT '',
            alpha3 TEXT NOT NULL DEFAULT '',
            alias TEXT NOT NULL DEFAULT '',
            population BIGINT NOT NULL DEFAULT 0,
            median_age DOUBLE PRECISION NOT NULL DEFAULT 0,
            gdp_per_cap_ppp DOUBLE PRECISION NOT NULL DEFAULT 0,
            build_id TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_jurisdiction ON _jurisdictions(parent_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_jurisdiction_alpha2 ON _jurisdictions(alpha2)`,
		`CREATE INDEX IF NOT EXISTS idx_jurisdiction_alpha3 ON _jurisdictions(alpha3)`,
		`CREATE TABLE IF NOT EXISTS _jurisdiction_builds (
            build_id TEXT PRIMARY KEY,
            countries INT NOT NULL,
            jurisdictions INT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
