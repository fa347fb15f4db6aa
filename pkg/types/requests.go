package types

// SearchFilterKey is the reserved Filters key carrying the free-text
// substring token. The query executor extracts it before building equality
// predicates; it is never matched as a field name.
const SearchFilterKey = "search_like_string"

// Filters maps field names to exact-match values. Field names must be
// declared by the record's schema; unknown names are a programming error.
type Filters map[string]any

// Clone returns a shallow copy, so executors can remove reserved keys
// without mutating the caller's map.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField pairs a field name with a direction.
type SortField struct {
	Field     string
	Direction Direction
}

// Sorting is an ordered list of sort fields; ties between rows are broken
// by the next entry in the list.
type Sorting []SortField

// Pagination is a limit/offset window. When supplied to a query, the total
// matching count is computed before the window is applied.
type Pagination struct {
	Limit  int
	Offset int
}
