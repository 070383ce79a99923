package merge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

const codeColumn = "Country Code"

// Table：宽表形式的 GDP 数据，每行一个国家代码，每列一个年份
type Table struct {
	columns map[string]int
	Rows    [][]string
}

// 文档注释：读取 GDP 宽表 CSV
// 背景：兼容世界银行下载格式，表头前可能有若干说明行；以第一行含 "Country Code" 单元格者为表头。
// 约束：允许行长度不一致与宽松引号；首个单元格的 UTF-8 BOM 被去除。
// 异常：CSV 整体无法解析返回错误；找不到表头返回 ErrNoHeader。
func DecodeGDP(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var tbl *Table
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode gdp csv: %w", err)
		}
		if len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], "\ufeff")
		}
		if tbl == nil {
			if cols := headerColumns(row); cols != nil {
				tbl = &Table{columns: cols}
			}
			continue
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if tbl == nil {
		return nil, ErrNoHeader
	}
	return tbl, nil
}

func headerColumns(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	found := false
	for i, c := range row {
		c = strings.TrimSpace(c)
		if c == codeColumn {
			found = true
		}
		if _, dup := cols[c]; !dup {
			cols[c] = i
		}
	}
	if !found {
		return nil
	}
	return cols
}

// Cell：按列名取单元格；列不存在或行过短时返回 false
func (tbl *Table) Cell(row []string, column string) (string, bool) {
	i, ok := tbl.columns[column]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// 文档注释：合并购买力平价人均 GDP
// 背景：按 Country Code 在全局索引中定位国家，从 years.Max 向下回溯，跳过空或缺失单元格，取第一个可解析的浮点值。
// 约束：仅写入仍为零值的字段；无法匹配的代码以 warn 级别输出诊断行（gdp_unresolved），不影响其它记录。
func GDPPerCapitaPPP(t *jurisdiction.Tree, tbl *Table, years YearRange) Report {
	rep := Report{Source: SourceGDPPerCapitaPPP}
	l := logger.L()
	for _, row := range tbl.Rows {
		rep.Records++
		code, _ := tbl.Cell(row, codeColumn)
		h, ok := t.Global().Lookup(code)
		if !ok {
			rep.Unresolved = append(rep.Unresolved, code)
			l.Warn("gdp_unresolved", "code", code)
			continue
		}
		rep.Matched++
		j := t.Get(h)
		for y := years.Max; y >= years.Min && j.GDPPerCapitaPPP == 0; y-- {
			cell, ok := tbl.Cell(row, strconv.Itoa(y))
			if !ok {
				continue
			}
			f, err := number(cell)
			if err != nil {
				if !errors.Is(err, errAbsent) {
					rep.SkippedCells++
					l.Debug("gdp_cell_skipped", "code", code, "year", y, "err", err)
				}
				continue
			}
			j.GDPPerCapitaPPP = f
			if f != 0 {
				rep.Written++
			}
		}
	}
	return rep
}
