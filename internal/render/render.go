// 包 render：将行政区树渲染为层级文档（JSON/YAML），并支持回读已构建的文档
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"geodata/internal/jurisdiction"
)

// Format：输出编码
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat：解析 OUTPUT_FORMAT；空串视为 json
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Decimal：始终带小数点输出的浮点数（0 输出为 0.0），与既有 countries.json 的数值格式保持一致
type Decimal float64

func (d Decimal) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(float64(d))
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(b, ".eE") {
		b = append(b, '.', '0')
	}
	return b, nil
}

// 文档注释：文档中的一个行政区条目
// 约束：字段顺序固定；alias 与 regions 总是输出（空列表而非缺省）。
type Entry struct {
	Name            string   `json:"name" yaml:"name"`
	Alpha2          string   `json:"alpha-2" yaml:"alpha-2"`
	Alpha3          string   `json:"alpha-3" yaml:"alpha-3"`
	Population      int64    `json:"population" yaml:"population"`
	MedianAge       Decimal  `json:"medianage" yaml:"medianage"`
	GDPPerCapitaPPP Decimal  `json:"gdppercapppp" yaml:"gdppercapppp"`
	Alias           []string `json:"alias" yaml:"alias"`
	Regions         []Entry  `json:"regions" yaml:"regions"`
}

// Document：按输入顺序递归生成文档条目
func Document(t *jurisdiction.Tree) []Entry {
	return entries(t, t.Countries())
}

func entries(t *jurisdiction.Tree, hs []jurisdiction.Handle) []Entry {
	out := make([]Entry, 0, len(hs))
	for _, h := range hs {
		j := t.Get(h)
		alias := make([]string, len(j.Aliases))
		copy(alias, j.Aliases)
		out = append(out, Entry{
			Name:            j.Name,
			Alpha2:          j.Alpha2,
			Alpha3:          j.Alpha3,
			Population:      j.Population,
			MedianAge:       Decimal(j.MedianAge),
			GDPPerCapitaPPP: Decimal(j.GDPPerCapitaPPP),
			Alias:           alias,
			Regions:         entries(t, j.Subdivisions),
		})
	}
	return out
}

// 文档注释：编码整棵树
// 背景：JSON 使用两空格缩进，非 ASCII 与 HTML 字符原样输出；YAML 同样两空格缩进。
func Encode(w io.Writer, t *jurisdiction.Tree, f Format) error {
	doc := Document(t)
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

// Decode：回读已构建的文档并重建树（保留统计字段与索引）
func Decode(r io.Reader, f Format) (*jurisdiction.Tree, error) {
	var doc []Entry
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
	}
	return jurisdiction.Restore(records(doc))
}

func records(doc []Entry) []jurisdiction.Record {
	out := make([]jurisdiction.Record, 0, len(doc))
	for i := range doc {
		e := &doc[i]
		out = append(out, jurisdiction.Record{
			Name:            &e.Name,
			Alpha2:          e.Alpha2,
			Alpha3:          e.Alpha3,
			Alias:           e.Alias,
			Regions:         records(e.Regions),
			Population:      e.Population,
			MedianAge:       float64(e.MedianAge),
			GDPPerCapitaPPP: float64(e.GDPPerCapitaPPP),
		})
	}
	return out
}
