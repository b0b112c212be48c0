package listing

import (
	"net/url"
	"strings"

	"github.com/trezcool/schooldash/core"
)

// SortSpec whitelists the orderings of a list page.
type SortSpec struct {
	Fields  map[string]string // {query name: field path}
	Default []core.DBOrdering
	Key     string // primary key field path, always the final tie-breaker
}

// Parse reads `ordering=a,-b`. Unknown names are ignored, like unknown filter keys.
// The result always ends with the primary key so that pages never overlap.
func (spec SortSpec) Parse(params url.Values) []core.DBOrdering {
	var ordering []core.DBOrdering
	seen := make(map[string]bool)

	add := func(ord core.DBOrdering) {
		if !seen[ord.Field] {
			seen[ord.Field] = true
			ordering = append(ordering, ord)
		}
	}

	for _, name := range strings.Split(params.Get(OrderingParam), ",") {
		name = strings.TrimSpace(name)
		descending := strings.HasPrefix(name, "-")
		if descending {
			name = name[1:] // drop "-"
		}
		if field, ok := spec.Fields[name]; ok {
			add(core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
	if len(ordering) == 0 {
		for _, ord := range spec.Default {
			add(ord)
		}
	}
	if spec.Key != "" {
		add(core.DBOrdering{Field: spec.Key, Ascending: true})
	}
	return ordering
}
