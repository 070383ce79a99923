package jurisdiction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMissingName：行政区记录缺少必填 name 字段
var ErrMissingName = errors.New("jurisdiction record missing name")

// 文档注释：基础地理数据中的一条记录
// 背景：字段命名沿用 ISO-3166 数据集（alpha-2/alpha-3/alias/regions）；统计字段仅在回读已构建文档时存在。
// 约束：Name 为指针以区分“缺失/null”与空字符串。
type Record struct {
	Name            *string  `json:"name"`
	Alpha2          string   `json:"alpha-2"`
	Alpha3          string   `json:"alpha-3"`
	Alias           []string `json:"alias"`
	Regions         []Record `json:"regions"`
	Population      int64    `json:"population"`
	MedianAge       float64  `json:"medianage"`
	GDPPerCapitaPPP float64  `json:"gdppercapppp"`
}

// DecodeGeography：解析基础地理 JSON（国家数组）
// 异常：顶层结构非法时返回错误；字段校验推迟到 Build
func DecodeGeography(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode geography: %w", err)
	}
	return recs, nil
}

// 文档注释：由基础地理记录构建行政区树与索引
// 背景：先递归构建子区并注册到父节点本地索引，再将国家注册到全局索引；注册顺序为名称、二位码、三位码、别名。
// 约束：统计字段一律从零值开始，输入中即使带有统计字段也被忽略。
// 异常：任一记录缺少 name 时返回 ErrMissingName（附记录路径），不产生部分结果。
func Build(recs []Record) (*Tree, error) {
	return build(recs, false)
}

// Restore：同 Build，但保留记录中的统计字段；用于从已构建文档重建树
func Restore(recs []Record) (*Tree, error) {
	return build(recs, true)
}

func build(recs []Record, keepStats bool) (*Tree, error) {
	b := &builder{
		t: &Tree{
			global: make(Index, len(recs)*3),
			local:  make(map[Handle]Index),
		},
		keepStats: keepStats,
	}
	for i := range recs {
		h, err := b.node(&recs[i], fmt.Sprintf("countries[%d]", i))
		if err != nil {
			return nil, err
		}
		b.t.countries = append(b.t.countries, h)
		b.t.global.register(b.t.Get(h), h)
	}
	return b.t, nil
}

type builder struct {
	t         *Tree
	keepStats bool
}

func (b *builder) node(r *Record, path string) (Handle, error) {
	if r.Name == nil {
		return 0, fmt.Errorf("%s: %w", path, ErrMissingName)
	}
	var children []Handle
	var local Index
	for i := range r.Regions {
		ch, err := b.node(&r.Regions[i], fmt.Sprintf("%s.regions[%d]", path, i))
		if err != nil {
			return 0, err
		}
		children = append(children, ch)
		if local == nil {
			local = make(Index, len(r.Regions)*3)
		}
		local.register(b.t.Get(ch), ch)
	}
	j := Jurisdiction{
		Name:         *r.Name,
		Alpha2:       r.Alpha2,
		Alpha3:       r.Alpha3,
		Aliases:      append([]string(nil), r.Alias...),
		Subdivisions: children,
	}
	if b.keepStats {
		j.Population = r.Population
		j.MedianAge = r.MedianAge
		j.GDPPerCapitaPPP = r.GDPPerCapitaPPP
	}
	h := Handle(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, j)
	if local != nil {
		b.t.local[h] = local
	}
	return h, nil
}
