// 包 merge：将外部统计数据源并入行政区树
// 背景：人口、年龄中位数、购买力平价人均 GDP 三类来源按固定顺序依次合并，每类来源只填补仍为零值的字段。
// 约束：单条来源记录无法解析或无法匹配时跳过，不中断整体构建。
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// 来源名称：用于日志、报告与指标标签
const (
	SourcePopulation            = "population"
	SourceSubdivisionPopulation = "subdivision_population"
	SourceMedianAge             = "median_age"
	SourceGDPPerCapitaPPP       = "gdp_per_capita_ppp"
)

var (
	// ErrUnknownCountry：子区人口来源指定的国家不在全局索引中
	ErrUnknownCountry = errors.New("unknown country")
	// ErrNoHeader：GDP 表中找不到 Country Code 表头行
	ErrNoHeader = errors.New("gdp table has no Country Code header")

	errAbsent = errors.New("absent")
)

// Report：单个来源的合并结果
type Report struct {
	Source       string
	Records      int
	Matched      int
	Written      int
	Unresolved   []string
	SkippedCells int
}

// YearRange：逐年回溯的窗口，从 Max 向下扫描到 Min（含）
type YearRange struct {
	Max int
	Min int
}

var (
	DefaultPopulationYears = YearRange{Max: 2016, Min: 1960}
	DefaultGDPYears        = YearRange{Max: 2019, Min: 1960}
)

// Records：JSON 来源中的对象数组；值保持原始形态，逐字段解析
type Records []map[string]any

// DecodeRecords：解析 JSON 对象数组，数值以 json.Number 保留
// 异常：顶层不是对象数组时返回错误（整体来源不可用属致命错误）
func DecodeRecords(r io.Reader) (Records, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var recs Records
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// str：取字符串字段，缺失或类型不符时返回 false
func str(rec map[string]any, key string) (string, bool) {
	v, ok := rec[key].(string)
	return v, ok
}

// number：将单元格解析为有限浮点数
// 约束：nil/缺失/空串返回 errAbsent；无法解析或非有限值返回其它错误
func number(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, errAbsent
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, err
		}
		f = n
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, errAbsent
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		f = n
	default:
		return 0, fmt.Errorf("unexpected cell type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

// count：将单元格数值四舍五入为人口数；负数或超出 int64 表示范围的值视为格式错误
func count(f float64) (int64, error) {
	r := math.Round(f)
	if r < 0 || r >= math.MaxInt64 {
		return 0, fmt.Errorf("population %v out of range", f)
	}
	return int64(r), nil
}
