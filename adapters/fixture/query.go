package fixture

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/artpar/apiquery/pkg/jsonapi"
)

// filter keeps resources whose attributes equal every filter. A filter value
// that is a comma separated list matches any of its entries.
func filter(resources []jsonapi.Resource, filters map[string]string) []jsonapi.Resource {
	if len(filters) == 0 {
		return resources
	}

	out := resources[:0:0]
	for _, r := range resources {
		if matchesAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r jsonapi.Resource, filters map[string]string) bool {
	for field, want := range filters {
		v, ok := fieldValue(r, field)
		if !ok {
			return false
		}
		got := jsonapi.FormatValue(v)
		if got == want {
			continue
		}
		if !anyOf(got, want) {
			return false
		}
	}
	return true
}

func anyOf(got, list string) bool {
	if !strings.Contains(list, ",") {
		return false
	}
	for _, candidate := range strings.Split(list, ",") {
		if strings.TrimSpace(candidate) == got {
			return true
		}
	}
	return false
}

func fieldValue(r jsonapi.Resource, field string) (any, bool) {
	if field == "id" {
		return r.ID, true
	}
	v, ok := r.Attributes[field]
	return v, ok
}

// sortResources orders resources by the sort fields, stably.
func sortResources(resources []jsonapi.Resource, fields []jsonapi.SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(resources, func(i, j int) bool {
		for _, f := range fields {
			a, _ := fieldValue(resources[i], f.Field)
			b, _ := fieldValue(resources[j], f.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compare orders values numerically when both are numbers, otherwise by
// their rendered text. Missing values sort first.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	fa, okA := number(a)
	fb, okB := number(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// paginate returns the requested page of resources.
func paginate(resources []jsonapi.Resource, p *jsonapi.Pagination) []jsonapi.Resource {
	start := p.Offset()
	if start >= len(resources) {
		return []jsonapi.Resource{}
	}
	end := start + p.Limit()
	if end > len(resources) {
		end = len(resources)
	}
	return resources[start:end]
}

// sparse applies fields[type] restrictions.
func sparse(resources []jsonapi.Resource, fields map[string][]string) []jsonapi.Resource {
	if len(fields) == 0 {
		return resources
	}
	out := make([]jsonapi.Resource, len(resources))
	for i, r := range resources {
		out[i] = r.Sparse(fields[r.Type])
	}
	return out
}
