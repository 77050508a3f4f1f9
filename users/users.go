// Package users mirrors one page of the admin users listing together with
// the query that selects it. Changing the query never fetches by itself;
// callers refetch once they have applied every change of a gesture.
package users

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSortBy   = "username"
)

// Pagination selects a page. TotalItems is reported by the server.
type Pagination struct {
	Page       int
	PageSize   int
	TotalItems int
}

// SortKey orders the listing by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort is an ordered list of sort keys; earlier keys take precedence.
type Sort struct {
	Keys []SortKey
}

// Filter narrows the listing. Search matches username or email.
type Filter struct {
	Search string
}

// Query is the full listing selection.
type Query struct {
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// DefaultQuery is page 1 of 10, sorted by username ascending, unfiltered.
func DefaultQuery() Query {
	return Query{
		Pagination: Pagination{Page: DefaultPage, PageSize: DefaultPageSize},
		Sort:       Sort{Keys: []SortKey{{Field: DefaultSortBy}}},
	}
}

// Values encodes q the way GET /users expects it.
func (q Query) Values() url.Values {
	fields := make([]string, len(q.Sort.Keys))
	desc := make([]string, len(q.Sort.Keys))
	for i, k := range q.Sort.Keys {
		fields[i] = k.Field
		desc[i] = strconv.FormatBool(k.Desc)
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Pagination.Page))
	v.Set("limit", strconv.Itoa(q.Pagination.PageSize))
	v.Set("sort_by", strings.Join(fields, ","))
	v.Set("sort_desc", strings.Join(desc, ","))
	v.Set("search", q.Filter.Search)
	return v
}

func (q Query) clone() Query {
	q.Sort.Keys = append([]SortKey(nil), q.Sort.Keys...)
	return q
}
