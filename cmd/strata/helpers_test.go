package main

import (
	"reflect"
	"testing"

	"github.com/mesh-intelligence/strata/pkg/types"
)

func TestParseFields(t *testing.T) {
	got, err := parseFields([]string{"name=Alpha Team", "is_active=false", "limit=3"})
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	want := map[string]any{
		"name":      "Alpha Team",
		"is_active": false,
		"limit":     float64(3),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseFields = %v, want %v", got, want)
	}

	if _, err := parseFields([]string{"no-equals-sign"}); err == nil {
		t.Error("parseFields accepted an argument without =")
	}
	if _, err := parseFields([]string{"=value"}); err == nil {
		t.Error("parseFields accepted an empty key")
	}
}

func TestParseSorting(t *testing.T) {
	got, err := parseSorting("created_at:desc, name")
	if err != nil {
		t.Fatalf("parseSorting: %v", err)
	}
	want := types.Sorting{
		{Field: "created_at", Direction: types.Desc},
		{Field: "name"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSorting = %v, want %v", got, want)
	}

	if _, err := parseSorting("name:sideways"); err == nil {
		t.Error("parseSorting accepted a bad direction")
	}
	if s, err := parseSorting(""); err != nil || s != nil {
		t.Errorf("parseSorting(\"\") = %v, %v, want nil, nil", s, err)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 40, "short"},
		{"a very long name indeed", 10, "a very ..."},
		{"héllö wörld tëam", 5, "hé..."},
		{"日本語のチーム名", 4, "日..."},
		{"日本語", 3, "日本語"},
		{"anything", 0, ""},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.n); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestBuildQueryInjectsSearch(t *testing.T) {
	q, err := buildQuery(map[string]any{"status": "open"}, "triage", "")
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}
	if q.Filters["status"] != "open" {
		t.Errorf("filters lost: %v", q.Filters)
	}
	if q.Filters[types.SearchFilterKey] != "triage" {
		t.Errorf("search token not injected: %v", q.Filters)
	}
}
