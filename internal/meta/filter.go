package meta

// Filter decides which types and members take part in a run.
type Filter interface {
	Include(h *Host, s Symbol) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(h *Host, s Symbol) bool

func (f FilterFunc) Include(h *Host, s Symbol) bool { return f(h, s) }

// FilterOptions is the configuration surface for NewFilter.
type FilterOptions struct {
	IncludeInternals  bool
	IncludePrivates   bool
	IncludeGenerated  bool
	ExcludeAttributes []string
}

// NewFilter composes visibility, generated-code and attribute exclusion filters.
func NewFilter(opts FilterOptions) Filter {
	filters := []Filter{
		VisibilityFilter{IncludeInternals: opts.IncludeInternals, IncludePrivates: opts.IncludePrivates},
	}
	if !opts.IncludeGenerated {
		filters = append(filters, FilterFunc(func(h *Host, s Symbol) bool { return !h.Generated(s) }))
	}
	if len(opts.ExcludeAttributes) > 0 {
		filters = append(filters, NewAttributeFilter(opts.ExcludeAttributes))
	}
	return Intersect(filters...)
}

// PublicOnly keeps the surface a caller outside the module can see.
var PublicOnly Filter = VisibilityFilter{}

type VisibilityFilter struct {
	IncludeInternals bool
	IncludePrivates  bool
}

func (f VisibilityFilter) Include(h *Host, s Symbol) bool {
	v := h.Visibility(s)
	switch {
	case v.Exposed():
		return true
	case f.IncludePrivates:
		return true
	case f.IncludeInternals:
		return v == VisInternal || v == VisProtectedAndInternal
	}
	return false
}

// AttributeFilter drops symbols carrying any of the listed attribute types.
type AttributeFilter struct {
	exclude map[string]struct{}
}

// NewAttributeFilter takes attribute type doc-ids, with or without "T:".
func NewAttributeFilter(docIDs []string) AttributeFilter {
	set := make(map[string]struct{}, len(docIDs))
	for _, id := range docIDs {
		set[NormalizeTypeDocID(id)] = struct{}{}
	}
	return AttributeFilter{exclude: set}
}

func (f AttributeFilter) Include(h *Host, s Symbol) bool {
	for _, a := range h.Attributes(s) {
		if _, ok := f.exclude[RefDocID(a.Type)]; ok {
			return false
		}
	}
	return true
}

type intersection []Filter

func (fs intersection) Include(h *Host, s Symbol) bool {
	for _, f := range fs {
		if !f.Include(h, s) {
			return false
		}
	}
	return true
}

// Intersect keeps a symbol only when every filter keeps it. Nil filters are skipped.
func Intersect(filters ...Filter) Filter {
	out := make(intersection, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
