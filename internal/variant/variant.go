// Package variant 商品规格矩阵解析：按库存计算每个维度的可选值，解析具体变体。
package variant

// Dimension 变体维度
type Dimension string

const (
	Color      Dimension = "color"
	SleeveType Dimension = "sleeve_type"
	Size       Dimension = "size"
	Fit        Dimension = "fit"
)

// Hierarchy 维度依赖顺序：颜色约束袖型，袖型约束尺码，尺码约束版型
var Hierarchy = []Dimension{Color, SleeveType, Size, Fit}

// ParseDimension 解析维度名称
func ParseDimension(raw string) (Dimension, bool) {
	for _, dim := range Hierarchy {
		if string(dim) == raw {
			return dim, true
		}
	}
	return "", false
}

// Variant 单个可售规格组合
type Variant struct {
	ID         uint   `json:"id"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	SleeveType string `json:"sleeve_type,omitempty"`
	Fit        string `json:"fit,omitempty"`
	Stock      int    `json:"stock"`
	SKU        string `json:"sku,omitempty"`
}

// Value 返回指定维度的取值，空串表示该维度缺省
func (v Variant) Value(dim Dimension) string {
	switch dim {
	case Color:
		return v.Color
	case SleeveType:
		return v.SleeveType
	case Size:
		return v.Size
	case Fit:
		return v.Fit
	}
	return ""
}

// Selection 维度选择，缺失或空串表示未选
type Selection map[Dimension]string

// Get 读取维度选择
func (s Selection) Get(dim Dimension) string {
	if s == nil {
		return ""
	}
	return s[dim]
}

// Clone 复制选择
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for dim, value := range s {
		if value != "" {
			out[dim] = value
		}
	}
	return out
}

// Ancestors 只保留 dim 之前的上游维度
func (s Selection) Ancestors(dim Dimension) Selection {
	out := Selection{}
	for _, d := range Hierarchy {
		if d == dim {
			break
		}
		if value := s.Get(d); value != "" {
			out[d] = value
		}
	}
	return out
}

// Schema 返回商品实际使用到的维度（按层级顺序）
func Schema(variants []Variant) []Dimension {
	used := make(map[Dimension]bool, len(Hierarchy))
	for _, v := range variants {
		for _, dim := range Hierarchy {
			if v.Value(dim) != "" {
				used[dim] = true
			}
		}
	}
	out := make([]Dimension, 0, len(used))
	for _, dim := range Hierarchy {
		if used[dim] {
			out = append(out, dim)
		}
	}
	return out
}

// matchesPartial 已固定的维度（skip 除外）全部匹配
func matchesPartial(v Variant, partial Selection, skip Dimension) bool {
	for _, dim := range Hierarchy {
		if dim == skip {
			continue
		}
		want := partial.Get(dim)
		if want == "" {
			continue
		}
		if v.Value(dim) != want {
			return false
		}
	}
	return true
}

// AvailableValues 返回 dim 维度在当前部分选择下仍可选（有库存）的去重取值，保持首次出现顺序
func AvailableValues(variants []Variant, dim Dimension, partial Selection) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, v := range variants {
		if v.Stock <= 0 {
			continue
		}
		value := v.Value(dim)
		if value == "" {
			continue
		}
		if !matchesPartial(v, partial, dim) {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// ValueOption 维度取值展示项：Available=false 表示存在但无库存（置灰）
type ValueOption struct {
	Value     string `json:"value"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

// Options 列出商品在 dim 维度存在的全部取值，并按部分选择聚合库存
func Options(variants []Variant, dim Dimension, partial Selection) []ValueOption {
	index := make(map[string]int)
	out := make([]ValueOption, 0)
	for _, v := range variants {
		value := v.Value(dim)
		if value == "" {
			continue
		}
		pos, ok := index[value]
		if !ok {
			pos = len(out)
			index[value] = pos
			out = append(out, ValueOption{Value: value})
		}
		if v.Stock > 0 && matchesPartial(v, partial, dim) {
			out[pos].Stock += v.Stock
		}
	}
	for i := range out {
		out[i].Available = out[i].Stock > 0
	}
	return out
}

// ResolveVariant 完整选择精确匹配唯一变体；选择中缺省的维度只匹配该维度为空的变体
func ResolveVariant(variants []Variant, full Selection) (*Variant, bool) {
	var found *Variant
	matches := 0
	for i := range variants {
		v := variants[i]
		ok := true
		for _, dim := range Hierarchy {
			if v.Value(dim) != full.Get(dim) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matches++
		found = &variants[i]
	}
	if matches != 1 {
		return nil, false
	}
	return found, true
}

// MaxQuantity 可购买上限，未解析到变体时为 0
func MaxQuantity(v *Variant) int {
	if v == nil || v.Stock < 0 {
		return 0
	}
	return v.Stock
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
