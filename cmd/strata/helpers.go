// Shared helpers for strata CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/strata/pkg/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// parseFields turns key=value arguments into a field map. Values are decoded
// as JSON where possible (numbers, booleans, null), otherwise kept as plain
// strings, so `is_active=false` and `name=Alpha Team` both do what they look
// like.
func parseFields(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		fields[key] = v
	}
	return fields, nil
}

// parseSorting turns "field:desc,other" into a sorting spec. Direction
// defaults to ascending.
func parseSorting(spec string) (types.Sorting, error) {
	if spec == "" {
		return nil, nil
	}
	var sorting types.Sorting
	for _, part := range strings.Split(spec, ",") {
		field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if field == "" {
			return nil, fmt.Errorf("sort spec %q names no field", part)
		}
		s := types.SortField{Field: field}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			s.Direction = types.Desc
		default:
			return nil, fmt.Errorf("sort direction %q is not asc or desc", dir)
		}
		sorting = append(sorting, s)
	}
	return sorting, nil
}

// buildQuery assembles the shared list inputs from the list flags.
func buildQuery(filters map[string]any, search string, sortSpec string) (store.Query, error) {
	sorting, err := parseSorting(sortSpec)
	if err != nil {
		return store.Query{}, err
	}
	f := types.Filters(filters)
	if search != "" {
		if f == nil {
			f = types.Filters{}
		}
		f[types.SearchFilterKey] = search
	}
	return store.Query{Filters: f, Sorting: sorting}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// shortID truncates a UUID to its first 8 characters for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to at most n runes, ellipsized when it cuts.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// ensureSQLiteDir creates the parent directory of a file-backed SQLite DSN so
// first runs do not fail on a missing directory.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
