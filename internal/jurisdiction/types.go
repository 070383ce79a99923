// 包 jurisdiction：国家与一级行政区的内存树与别名查找索引
package jurisdiction

// Handle：节点在树内存池中的下标；构建完成后稳定不变
type Handle int

// 文档注释：行政区节点
// 背景：国家与其一级行政区共用同一结构；统计字段以零值表示“未知”。
// 约束：子节点以 Handle 引用，不持有指针，树结构在构建后只读，合并阶段只改统计字段。
type Jurisdiction struct {
	Name            string
	Alpha2          string
	Alpha3          string
	Aliases         []string
	Population      int64
	MedianAge       float64
	GDPPerCapitaPPP float64
	Subdivisions    []Handle
}

// Keys：按注册顺序返回该节点的全部查找键（名称、二位码、三位码、别名）
func (j *Jurisdiction) Keys() []string {
	keys := make([]string, 0, 3+len(j.Aliases))
	keys = append(keys, j.Name)
	if j.Alpha2 != "" {
		keys = append(keys, j.Alpha2)
	}
	if j.Alpha3 != "" {
		keys = append(keys, j.Alpha3)
	}
	return append(keys, j.Aliases...)
}

// Index：查找键到节点的映射；同一作用域内键重复时后写覆盖先写
type Index map[string]Handle

func (ix Index) register(j *Jurisdiction, h Handle) {
	for _, k := range j.Keys() {
		ix[k] = h
	}
}

// Lookup：按键查找节点；nil 索引视为空
func (ix Index) Lookup(key string) (Handle, bool) {
	h, ok := ix[key]
	return h, ok
}

// 文档注释：行政区树
// 背景：全部节点集中存放于 nodes，国家顺序与本地索引以 Handle 表达，避免父子循环引用。
// 约束：global 仅含顶层国家；local 按父节点 Handle 保存其直接子节点的索引。
type Tree struct {
	nodes     []Jurisdiction
	countries []Handle
	global    Index
	local     map[Handle]Index
}

func (t *Tree) Len() int { return len(t.nodes) }

// Get：返回节点指针，合并阶段通过它就地写入统计字段
func (t *Tree) Get(h Handle) *Jurisdiction { return &t.nodes[h] }

// Countries：按输入顺序返回顶层国家
func (t *Tree) Countries() []Handle { return t.countries }

func (t *Tree) Subdivisions(h Handle) []Handle { return t.nodes[h].Subdivisions }

// Global：国家级索引
func (t *Tree) Global() Index { return t.global }

// Local：某节点的子区索引；无子区时返回 nil（查找总是未命中）
func (t *Tree) Local(h Handle) Index { return t.local[h] }

// Country：按全局索引查找国家
func (t *Tree) Country(key string) (*Jurisdiction, bool) {
	h, ok := t.global.Lookup(key)
	if !ok {
		return nil, false
	}
	return t.Get(h), true
}
