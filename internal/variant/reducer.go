package variant

// ResetPolicy 下游维度失效时的重置策略
type ResetPolicy int

const (
	// ResetFirstAvailable 重置为第一个可选值
	ResetFirstAvailable ResetPolicy = iota
	// ResetUnset 重置为未选
	ResetUnset
)

// Action 选择动作
type Action interface {
	target() Dimension
}

// Select 选择某个维度的取值
type Select struct {
	Dim   Dimension
	Value string
}

func (a Select) target() Dimension { return a.Dim }

// Clear 清空某个维度
type Clear struct {
	Dim Dimension
}

func (a Clear) target() Dimension { return a.Dim }

// Reset 一次级联重置记录
type Reset struct {
	Dim  Dimension `json:"dimension"`
	From string    `json:"from"`
	To   string    `json:"to"`
}

// Result 归约结果
type Result struct {
	Selection Selection `json:"selection"`
	Resets    []Reset   `json:"resets,omitempty"`
	Rejected  bool      `json:"rejected,omitempty"`
}

// Reducer 维度选择归约器
type Reducer struct {
	variants []Variant
	schema   []Dimension
	policy   ResetPolicy
}

// NewReducer 创建归约器
func NewReducer(variants []Variant, policy ResetPolicy) *Reducer {
	return &Reducer{
		variants: variants,
		schema:   Schema(variants),
		policy:   policy,
	}
}

// Reduce 应用动作并级联重置下游维度；不可选的取值会被拒绝，选择保持不变
func (r *Reducer) Reduce(current Selection, action Action) Result {
	next := current.Clone()
	switch a := action.(type) {
	case Select:
		if a.Value == "" {
			delete(next, a.Dim)
			break
		}
		allowed := AvailableValues(r.variants, a.Dim, next.Ancestors(a.Dim))
		if !contains(allowed, a.Value) {
			return Result{Selection: current.Clone(), Rejected: true}
		}
		next[a.Dim] = a.Value
	case Clear:
		delete(next, a.Dim)
	default:
		return Result{Selection: current.Clone(), Rejected: true}
	}
	resets := r.cascade(next, action.target())
	return Result{Selection: next, Resets: resets}
}

// Revalidate 从最上游开始重新校验整个选择（例如库存变化后）
func (r *Reducer) Revalidate(current Selection) Result {
	next := current.Clone()
	resets := r.cascade(next, "")
	return Result{Selection: next, Resets: resets}
}

// cascade 校验 changed 之后的各维度，changed 为空时校验全部维度
func (r *Reducer) cascade(sel Selection, changed Dimension) []Reset {
	var resets []Reset
	downstream := changed == ""
	for _, dim := range r.schema {
		if !downstream {
			if dim == changed {
				downstream = true
			}
			continue
		}
		current := sel.Get(dim)
		if current == "" {
			continue
		}
		allowed := AvailableValues(r.variants, dim, sel.Ancestors(dim))
		if contains(allowed, current) {
			continue
		}
		replacement := ""
		if r.policy == ResetFirstAvailable && len(allowed) > 0 {
			replacement = allowed[0]
		}
		if replacement == "" {
			delete(sel, dim)
		} else {
			sel[dim] = replacement
		}
		resets = append(resets, Reset{Dim: dim, From: current, To: replacement})
	}
	return resets
}

// DimensionView 单个维度的展示状态
type DimensionView struct {
	Dim      Dimension     `json:"dimension"`
	Selected string        `json:"selected,omitempty"`
	Options  []ValueOption `json:"options"`
}

// View 当前选择的完整展示快照
type View struct {
	Selection   Selection       `json:"selection"`
	Dimensions  []DimensionView `json:"dimensions"`
	Variant     *Variant        `json:"variant,omitempty"`
	MaxQuantity int             `json:"max_quantity"`
	Resets      []Reset         `json:"resets,omitempty"`
	Rejected    bool            `json:"rejected,omitempty"`
}

// Snapshot 生成选择的展示快照：每个维度按上游选择计算可选值，选满时解析变体
func (r *Reducer) Snapshot(sel Selection) View {
	view := View{Selection: sel.Clone(), Dimensions: make([]DimensionView, 0, len(r.schema))}
	complete := len(r.schema) > 0
	for _, dim := range r.schema {
		selected := sel.Get(dim)
		if selected == "" {
			complete = false
		}
		view.Dimensions = append(view.Dimensions, DimensionView{
			Dim:      dim,
			Selected: selected,
			Options:  Options(r.variants, dim, sel.Ancestors(dim)),
		})
	}
	if complete {
		if v, ok := ResolveVariant(r.variants, sel); ok {
			resolved := *v
			view.Variant = &resolved
			view.MaxQuantity = MaxQuantity(&resolved)
		}
	}
	return view
}
