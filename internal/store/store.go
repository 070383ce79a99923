// 包 store：将构建好的行政区树同步到 PostgreSQL，供在线服务按父子关系查询
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// Store：数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Row：树展开后的一行；Parent 为父行在展开结果中的下标，国家行为 -1
type Row struct {
	Parent          int
	Position        int
	Name            string
	Alpha2          string
	Alpha3          string
	Alias           string
	Population      int64
	MedianAge       float64
	GDPPerCapitaPPP float64
}

// 文档注释：按深度优先将树展开为行
// 背景：父行总在子行之前，写库时可按顺序取得父行 id；Position 记录同级顺序，便于按输入顺序回读。
// 约束：别名以 ';' 连接存放在单列中。
func Rows(t *jurisdiction.Tree) []Row {
	rows := make([]Row, 0, t.Len())
	var walk func(hs []jurisdiction.Handle, parent int)
	walk = func(hs []jurisdiction.Handle, parent int) {
		for pos, h := range hs {
			j := t.Get(h)
			rows = append(rows, Row{
				Parent:          parent,
				Position:        pos,
				Name:            j.Name,
				Alpha2:          j.Alpha2,
				Alpha3:          j.Alpha3,
				Alias:           strings.Join(j.Aliases, ";"),
				Population:      j.Population,
				MedianAge:       j.MedianAge,
				GDPPerCapitaPPP: j.GDPPerCapitaPPP,
			})
			walk(j.Subdivisions, len(rows)-1)
		}
	}
	walk(t.Countries(), -1)
	return rows
}

const upsertJurisdiction = `INSERT INTO _jurisdictions(parent_id,position,name,alpha2,alpha3,alias,population,median_age,gdp_per_cap_ppp,build_id,updated_at)
    VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
    ON CONFLICT (parent_id,name) DO UPDATE SET position=EXCLUDED.position, alpha2=EXCLUDED.alpha2, alpha3=EXCLUDED.alpha3,
        alias=EXCLUDED.alias, population=EXCLUDED.population, median_age=EXCLUDED.median_age,
        gdp_per_cap_ppp=EXCLUDED.gdp_per_cap_ppp, build_id=EXCLUDED.build_id, updated_at=now()
    RETURNING id`

// SyncResult：一次同步的统计
type SyncResult struct {
	Upserted int
	Deleted  int64
}

// 文档注释：将整棵树同步到数据库
// 背景：单事务内按 (parent_id,name) UPSERT 全部节点并打上 buildID，再删除 buildID 不同的行（已从数据集中消失的行政区）。
// 约束：同步是幂等的；事务失败时整体回滚，库中保持上一次构建的内容。
// 异常：SQL 执行或提交失败直接返回 error。
func (s *Store) Sync(ctx context.Context, t *jurisdiction.Tree, buildID string) (SyncResult, error) {
	var res SyncResult
	l := logger.L()
	l.Info("pg_sync_start", "build_id", buildID, "jurisdictions", t.Len())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, upsertJurisdiction)
	if err != nil {
		return res, err
	}
	defer stmt.Close()

	rows := Rows(t)
	ids := make([]int, len(rows))
	for i, r := range rows {
		parentID := 0
		if r.Parent >= 0 {
			parentID = ids[r.Parent]
		}
		if err := stmt.QueryRowContext(ctx, parentID, r.Position, r.Name, r.Alpha2, r.Alpha3, r.Alias,
			r.Population, r.MedianAge, r.GDPPerCapitaPPP, buildID).Scan(&ids[i]); err != nil {
			return res, fmt.Errorf("upsert %q: %w", r.Name, err)
		}
		res.Upserted++
		if res.Upserted%1000 == 0 {
			l.Debug("pg_sync_progress", "count", res.Upserted)
		}
	}
	del, err := tx.ExecContext(ctx, `DELETE FROM _jurisdictions WHERE build_id <> $1`, buildID)
	if err != nil {
		return res, err
	}
	res.Deleted, _ = del.RowsAffected()
	if _, err := tx.ExecContext(ctx, `INSERT INTO _jurisdiction_builds(build_id,countries,jurisdictions) VALUES($1,$2,$3)`,
		buildID, len(t.Countries()), len(rows)); err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	l.Info("pg_sync_done", "build_id", buildID, "upserted", res.Upserted, "deleted", res.Deleted)
	return res, nil
}

// Count：当前库中的国家数与行政区总数
func (s *Store) Count(ctx context.Context) (countries, total int64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FILTER (WHERE parent_id=0), COUNT(1) FROM _jurisdictions`).Scan(&countries, &total)
	return
}
