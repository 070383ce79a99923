// 包 coverage：以 MaxMind 国家库为参照，检查行政区数据集对 ISO 国家代码的覆盖情况
package coverage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"geodata/internal/jurisdiction"
	"geodata/internal/logger"
)

// Result：覆盖检查结果；Missing 为库中出现但全局索引无法解析的代码（按字典序）
type Result struct {
	DatabaseType string
	Networks     int
	Codes        int
	Missing      []string
	Names        map[string]string
}

// 文档注释：枚举 MMDB 中全部网段的国家代码
// 背景：GeoLite2/GeoIP2 Country 与 City 库的记录均含 country.iso_code，以 geoip2.Country 结构解码即可；跳过 IPv4 映射等别名网段避免重复计数。
// 异常：文件无法打开、库类型不含国家信息或解码失败返回错误。
func ScanMMDB(path string) (codes map[string]string, dbType string, networks int, err error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, "", 0, err
	}
	defer r.Close()
	dbType = r.Metadata.DatabaseType
	if !strings.Contains(dbType, "Country") && !strings.Contains(dbType, "City") {
		return nil, dbType, 0, fmt.Errorf("mmdb type %q has no country data", dbType)
	}
	codes = make(map[string]string)
	it := r.Networks(maxminddb.SkipAliasedNetworks)
	for it.Next() {
		var rec geoip2.Country
		if _, err := it.Network(&rec); err != nil {
			return nil, dbType, networks, err
		}
		networks++
		if code := rec.Country.IsoCode; code != "" {
			if _, seen := codes[code]; !seen {
				codes[code] = rec.Country.Names["en"]
			}
		}
	}
	if err := it.Err(); err != nil {
		return nil, dbType, networks, err
	}
	return codes, dbType, networks, nil
}

// Compare：找出在全局索引中无法解析的代码；只读，不修改树
func Compare(t *jurisdiction.Tree, codes map[string]string) []string {
	var missing []string
	for code := range codes {
		if _, ok := t.Global().Lookup(code); !ok {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	return missing
}

// Check：扫描 MMDB 并与树比较，逐条记录缺失代码
func Check(t *jurisdiction.Tree, path string) (*Result, error) {
	codes, dbType, networks, err := ScanMMDB(path)
	if err != nil {
		return nil, err
	}
	res := &Result{
		DatabaseType: dbType,
		Networks:     networks,
		Codes:        len(codes),
		Missing:      Compare(t, codes),
		Names:        codes,
	}
	l := logger.L()
	for _, code := range res.Missing {
		l.Warn("coverage_missing", "code", code, "name", codes[code])
	}
	l.Info("coverage_done", "db_type", dbType, "networks", networks, "codes", res.Codes, "missing", len(res.Missing))
	return res, nil
}
