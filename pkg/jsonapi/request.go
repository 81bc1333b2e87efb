package jsonapi

import (
	"net/url"
	"sort"
	"strings"
)

// Request is a parsed JSON:API collection request, as seen by a server.
type Request struct {
	Filters map[string]string
	Sort    []SortField
	Include []string
	Fields  map[string][]string
	Page    int
	PerPage int
}

// SortField is one entry of the sort parameter.
type SortField struct {
	Field string
	Desc  bool
}

// ParseRequest extracts filter, sort, include, fields and pagination from a query.
// Both page[number]/page[size] and the flat page/per_page forms are accepted.
func ParseRequest(query url.Values, defaultPerPage int) Request {
	req := Request{
		Filters: make(map[string]string),
		Fields:  make(map[string][]string),
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if name, ok := bracketed(key, ParamFilter); ok {
			req.Filters[name] = query.Get(key)
			continue
		}
		if typ, ok := bracketed(key, ParamFields); ok {
			req.Fields[typ] = splitList(query.Get(key))
		}
	}

	for _, s := range splitList(query.Get(ParamSort)) {
		switch {
		case strings.HasPrefix(s, "-"):
			req.Sort = append(req.Sort, SortField{Field: s[1:], Desc: true})
		case strings.HasPrefix(s, "+"):
			req.Sort = append(req.Sort, SortField{Field: s[1:]})
		default:
			req.Sort = append(req.Sort, SortField{Field: s})
		}
	}

	req.Include = splitList(query.Get(ParamInclude))
	req.Page, req.PerPage = ParsePaginationParams(query, defaultPerPage)

	return req
}

// bracketed returns the inner name of a "prefix[name]" key.
func bracketed(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return "", false
	}
	return key[len(prefix)+1 : len(key)-1], true
}

// splitList splits a comma separated list, dropping empty entries.
// A leading space is trimmed as well, since an unescaped "+" decodes to one.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
