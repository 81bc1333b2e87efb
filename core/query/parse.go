package query

import (
	"fmt"
	"sort"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey is one field of a sort order.
type SortKey struct {
	Field     string
	Direction Direction
}

// SortKeys is an ordered field-to-direction mapping.
type SortKeys []SortKey

// Asc sorts by field ascending.
func Asc(field string) SortKey {
	return SortKey{Field: field, Direction: Ascending}
}

// Desc sorts by field descending.
func Desc(field string) SortKey {
	return SortKey{Field: field, Direction: Descending}
}

// String renders the key as a signed sort directive. Only Descending sorts
// descending; every other direction, including the empty one, is ascending.
func (k SortKey) String() string {
	if k.Direction == Descending {
		return "-" + k.Field
	}
	return "+" + k.Field
}

// parseOrders turns Order arguments into signed sort directives.
// Go maps have no insertion order, so map arguments are read in key order;
// use SortKeys when the order matters.
func parseOrders(args ...any) []string {
	var out []string
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, "+"+v)
		case []string:
			for _, field := range v {
				out = append(out, "+"+field)
			}
		case SortKey:
			out = append(out, v.String())
		case SortKeys:
			for _, k := range v {
				out = append(out, k.String())
			}
		case []SortKey:
			for _, k := range v {
				out = append(out, k.String())
			}
		case map[string]Direction:
			for _, field := range sortedKeys(v) {
				out = append(out, SortKey{Field: field, Direction: v[field]}.String())
			}
		case map[string]string:
			for _, field := range sortedKeys(v) {
				out = append(out, SortKey{Field: field, Direction: Direction(v[field])}.String())
			}
		case map[string]any:
			for _, field := range sortedKeys(v) {
				out = append(out, SortKey{Field: field, Direction: Direction(fmt.Sprint(v[field]))}.String())
			}
		default:
			out = append(out, "+"+fmt.Sprint(v))
		}
	}
	return out
}

// Relation is a relationship name with nested relationships below it.
type Relation struct {
	Name   string
	Nested []any
}

// Nest builds a Relation. Nested entries take any form Includes accepts.
func Nest(name string, nested ...any) Relation {
	return Relation{Name: name, Nested: nested}
}

// expandIncludes flattens Includes arguments into dotted relationship paths,
// in encounter order. Maps are read in key order.
//
// A Relation without nested entries stands for the relation itself, while a
// map entry with an empty list contributes nothing.
func expandIncludes(args ...any) []string {
	var out []string
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		case []any:
			out = append(out, expandIncludes(v...)...)
		case Relation:
			if len(v.Nested) == 0 {
				out = append(out, v.Name)
				continue
			}
			out = append(out, prefixed(v.Name, expandIncludes(v.Nested...))...)
		case []Relation:
			for _, r := range v {
				out = append(out, expandIncludes(r)...)
			}
		case map[string]any:
			for _, name := range sortedKeys(v) {
				out = append(out, prefixed(name, expandIncludes(v[name]))...)
			}
		case map[string][]string:
			for _, name := range sortedKeys(v) {
				out = append(out, prefixed(name, v[name])...)
			}
		case map[string]string:
			for _, name := range sortedKeys(v) {
				out = append(out, name+"."+v[name])
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

func prefixed(parent string, children []string) []string {
	out := make([]string, len(children))
	for i, child := range children {
		out[i] = parent + "." + child
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
