package utils

import (
	"database/sql"
	"net"
	"net/url"

	_ "github.com/lib/pq"
)

// 文档注释：由 PG_* 环境变量拼装 PostgreSQL 连接串
// 约束：用户名与密码经 URL 转义；PG_DB 缺省为 geodata，PG_SSLMODE 缺省为 disable。
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(envOr("PG_HOST", "localhost"), envOr("PG_PORT", "5432")),
		Path:     "/" + envOr("PG_DB", "geodata"),
		RawQuery: url.Values{"sslmode": {envOr("PG_SSLMODE", "disable")}}.Encode(),
	}
	user := envOr("PG_USER", "postgres")
	if pass := envOr("PG_PASSWORD", ""); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// OpenPostgresFromEnv：同步只用一个事务，连接池保持很小
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", 4))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", 2))
	return db, nil
}
