package jsonapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameter names defined by JSON:API.
const (
	ParamFilter  = "filter"
	ParamSort    = "sort"
	ParamInclude = "include"
	ParamFields  = "fields"
	ParamPage    = "page"

	// ParamPerPage is the flat page-size key used by legacy servers.
	ParamPerPage = "per_page"

	PageNumber = "number"
	PageSize   = "size"
)

// Params is the parameter mapping of a JSON:API collection request:
//
//	filter:  {<key>: <value>}
//	sort:    "+f1,-f2"
//	include: "a,b.c"
//	fields:  {<type>: "f1,f2"}
//	page:    {number: 1, size: 10}
//
// Keys are present only when the corresponding clause is non-empty.
type Params map[string]any

// Values flattens the params into URL query values using bracket notation,
// e.g. filter[status]=published, page[number]=2, fields[articles]=title,body.
func (p Params) Values() url.Values {
	values := url.Values{}
	for key, val := range p {
		flatten(values, key, val)
	}
	return values
}

// Encode returns the URL-encoded query string, sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func flatten(values url.Values, prefix string, val any) {
	switch v := val.(type) {
	case Params:
		for k, inner := range v {
			flatten(values, prefix+"["+k+"]", inner)
		}
	case map[string]any:
		for k, inner := range v {
			flatten(values, prefix+"["+k+"]", inner)
		}
	case map[string]string:
		for k, inner := range v {
			values.Add(prefix+"["+k+"]", inner)
		}
	case map[string]int:
		for k, inner := range v {
			values.Add(prefix+"["+k+"]", strconv.Itoa(inner))
		}
	default:
		values.Add(prefix, FormatValue(val))
	}
}

// FormatValue renders a scalar or list parameter value. Lists are comma joined.
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
