package merge

import (
	"errors"
	"fmt"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// 文档注释：合并国家人口时间序列
// 背景：记录以 Country_Code 在全局索引中定位国家，字段名为 Year_<年份>；从 years.Max 向下回溯，取第一个有效值，即“最近可用年份”。
// 约束：仅在人口仍为零值时写入；null/缺失/非法单元格跳过该年继续回溯；数值四舍五入为整数。
func Population(t *jurisdiction.Tree, recs Records, years YearRange) Report {
	rep := Report{Source: SourcePopulation}
	for _, rec := range recs {
		rep.Records++
		code, ok := str(rec, "Country_Code")
		if !ok {
			continue
		}
		h, ok := t.Global().Lookup(code)
		if !ok {
			rep.Unresolved = append(rep.Unresolved, code)
			continue
		}
		rep.Matched++
		j := t.Get(h)
		for y := years.Max; y >= years.Min && j.Population == 0; y-- {
			n, err := cell(rec[fmt.Sprintf("Year_%d", y)])
			if err != nil {
				if !errors.Is(err, errAbsent) {
					rep.SkippedCells++
					logger.L().Debug("population_cell_skipped", "code", code, "year", y, "err", err)
				}
				continue
			}
			j.Population = n
			if j.Population != 0 {
				rep.Written++
			}
		}
	}
	return rep
}

// 文档注释：合并某一国家的子区人口
// 背景：来源为单一国家的一级行政区人口（如美国各州），按 name 在该国本地索引中匹配；每条记录只有一个值，不做年份回溯。
// 约束：仅写入仍为零值的子区人口；国家本身不在本地索引中，因此不会被改写。
// 异常：country 在全局索引中不存在时返回 ErrUnknownCountry。
func SubdivisionPopulation(t *jurisdiction.Tree, country string, recs Records) (Report, error) {
	rep := Report{Source: SourceSubdivisionPopulation}
	ch, ok := t.Global().Lookup(country)
	if !ok {
		return rep, fmt.Errorf("subdivision population country %q: %w", country, ErrUnknownCountry)
	}
	local := t.Local(ch)
	for _, rec := range recs {
		rep.Records++
		name, ok := str(rec, "name")
		if !ok {
			continue
		}
		h, ok := local.Lookup(name)
		if !ok {
			rep.Unresolved = append(rep.Unresolved, name)
			continue
		}
		rep.Matched++
		j := t.Get(h)
		if j.Population != 0 {
			continue
		}
		n, err := cell(rec["population"])
		if err != nil {
			if !errors.Is(err, errAbsent) {
				rep.SkippedCells++
				logger.L().Debug("subdivision_population_cell_skipped", "name", name, "err", err)
			}
			continue
		}
		j.Population = n
		if j.Population != 0 {
			rep.Written++
		}
	}
	return rep, nil
}

func cell(v any) (int64, error) {
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	return count(f)
}
