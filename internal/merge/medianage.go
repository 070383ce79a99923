package merge

import (
	"errors"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// MedianAge：合并年龄中位数
// 背景：优先以 Code 在全局索引中匹配，Code 缺失或未命中时回退到 Name；每条记录一个值。
// 约束：仅写入仍为零值的字段；两种键都未命中的记录静默跳过（计入报告）。
func MedianAge(t *jurisdiction.Tree, recs Records) Report {
	rep := Report{Source: SourceMedianAge}
	for _, rec := range recs {
		rep.Records++
		h, key, ok := resolveCodeOrName(t.Global(), rec)
		if !ok {
			if key != "" {
				rep.Unresolved = append(rep.Unresolved, key)
			}
			continue
		}
		rep.Matched++
		j := t.Get(h)
		if j.MedianAge != 0 {
			continue
		}
		f, err := number(rec["medianage"])
		if err != nil {
			if !errors.Is(err, errAbsent) {
				rep.SkippedCells++
				logger.L().Debug("median_age_cell_skipped", "key", key, "err", err)
			}
			continue
		}
		j.MedianAge = f
		if f != 0 {
			rep.Written++
		}
	}
	return rep
}

// resolveCodeOrName：返回命中的节点与用于报告的键（优先 Code，其次 Name）
func resolveCodeOrName(ix jurisdiction.Index, rec map[string]any) (jurisdiction.Handle, string, bool) {
	code, hasCode := str(rec, "Code")
	if hasCode {
		if h, ok := ix.Lookup(code); ok {
			return h, code, true
		}
	}
	if name, ok := str(rec, "Name"); ok {
		h, ok := ix.Lookup(name)
		return h, name, ok
	}
	return 0, code, false
}
