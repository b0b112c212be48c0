// Package listing turns list-page query parameters into typed filters, orderings and pages.
//
// Each entity declares a FilterSpec, a table of query keys mapped to field paths, a coercion and
// a comparison. Repositories translate the resulting Conditions for their store.
package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Reserved query keys, never treated as filters.
const (
	PageParam     = "page"
	OrderingParam = "ordering"
	SearchParam   = "search"
)

type Coercion int

const (
	AsString Coercion = iota
	AsInt
)

func (c Coercion) String() string {
	switch c {
	case AsInt:
		return "integer"
	default:
		return "string"
	}
}

// Coerce converts a raw query value.
func (c Coercion) Coerce(key, raw string) (interface{}, error) {
	switch c {
	case AsInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ParseError{Key: key, Value: raw, Kind: c}
		}
		return n, nil
	default:
		return raw, nil
	}
}

type Op int

const (
	Equal Op = iota
	ContainsFold
)

func (op Op) String() string {
	if op == ContainsFold {
		return "contains"
	}
	return "eq"
}

// FilterField maps a query key to one or more field paths. Several paths are OR-ed.
type FilterField struct {
	Key    string
	Fields []string
	Coerce Coercion
	Op     Op
}

// FilterSpec is the declarative filter table of a list page.
type FilterSpec []FilterField

// Condition is a coerced filter ready for a repository.
type Condition struct {
	Key    string
	Fields []string
	Op     Op
	Value  interface{}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", strings.Join(c.Fields, "|"), c.Op, c.Value)
}

// Filter is a conjunction of conditions.
type Filter []Condition

// Build turns query parameters into a Filter.
// Unknown keys and empty values are ignored; a value that does not coerce is a *ParseError.
func (spec FilterSpec) Build(params url.Values) (Filter, error) {
	filter := make(Filter, 0, len(spec))
	for _, fld := range spec {
		raw := strings.TrimSpace(params.Get(fld.Key))
		if raw == "" {
			continue
		}
		val, err := fld.Coerce.Coerce(fld.Key, raw)
		if err != nil {
			return nil, err
		}
		filter = append(filter, Condition{Key: fld.Key, Fields: fld.Fields, Op: fld.Op, Value: val})
	}
	return filter, nil
}

// ParseError reports a query parameter that could not be coerced.
type ParseError struct {
	Key   string
	Value string
	Kind  Coercion
	Want  string // overrides Kind in the message, e.g. "integer >= 1"
}

func (err *ParseError) Error() string {
	want := err.Want
	if want == "" {
		want = err.Kind.String()
	}
	return fmt.Sprintf("invalid %s %q: expected %s", err.Key, err.Value, want)
}
