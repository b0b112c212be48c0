package listing

import (
	"net/url"

	"github.com/trezcool/schooldash/core"
)

// Query is everything a repository needs to count and fetch one page.
type Query struct {
	Filter   Filter
	Ordering []core.DBOrdering
	Page     Page
}

// Parse builds the Query of a list page from its query parameters.
func Parse(params url.Values, filters FilterSpec, sorts SortSpec, pageSize int) (Query, error) {
	filter, err := filters.Build(params)
	if err != nil {
		return Query{}, err
	}
	page, err := ParsePage(params, pageSize)
	if err != nil {
		return Query{}, err
	}
	return Query{Filter: filter, Ordering: sorts.Parse(params), Page: page}, nil
}

// ByKey is the Query selecting a single row by primary key.
func ByKey(keyField string, key interface{}) Query {
	return Query{
		Filter:   Filter{{Key: keyField, Fields: []string{keyField}, Op: Equal, Value: key}},
		Ordering: []core.DBOrdering{{Field: keyField, Ascending: true}},
		Page:     Page{Number: 1, Size: 1},
	}
}
