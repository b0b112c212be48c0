// Package school holds the dashboard's entities: their list pages, forms and mutations.
package school

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core/listing"
)

var (
	// errors
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("permission denied")
	ErrInUse     = errors.New("record is still referenced by other records")
)

// Kind names a list page, as found in its URL.
type Kind string

const (
	Teachers Kind = "teachers"
	Students Kind = "students"
	Parents  Kind = "parents"
	Subjects Kind = "subjects"
	Classes  Kind = "classes"
	Lessons  Kind = "lessons"
	Exams    Kind = "exams"
)

// Row is one line of a list page.
type Row interface {
	// Key is the row's primary key, as found in URLs.
	Key() string
	// Cells are the rendered values, one per Entity column.
	Cells() []string
	// FormData pre-fills the update form.
	FormData() map[string]string
}

// FormField describes one input of an entity's Form Modal.
type FormField struct {
	Name    string
	Label   string
	Type    string // text, email, password, date, datetime-local, number, select, file
	Section string
	Options []string
}

// Entity is the declaration of a list page and its records.
type Entity struct {
	Kind     Kind
	Name     string // singular, as shown in form titles
	Title    string
	Table    string
	Role     string // account role of the records; empty when records have no login
	KeyKind  listing.Coercion
	Filters  listing.FilterSpec
	Sorts    listing.SortSpec
	Columns  []string
	Fields   []FormField
	NewForm  func() Form
	imgField bool
}

const KeyField = "id"

// ParseKey coerces a URL key; a malformed key cannot match any record.
func (e *Entity) ParseKey(raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotFound
	}
	key, err := e.KeyKind.Coerce(KeyField, raw)
	if err != nil {
		return nil, ErrNotFound
	}
	return key, nil
}

// newKey returns the key of a new record; serial tables get theirs from the store.
func (e *Entity) newKey() interface{} {
	if e.KeyKind == listing.AsString {
		return uuid.New().String()
	}
	return nil
}

// HasImage reports whether the entity's form carries an image upload.
func (e *Entity) HasImage() bool {
	return e.imgField
}

// deleteMutations removes a record and, for people, their login account.
func (e *Entity) deleteMutations(key interface{}) []Mutation {
	muts := make([]Mutation, 0, 2)
	if e.Role != "" {
		muts = append(muts, Mutation{Op: Delete, Table: AccountTable, KeyColumn: "person_id", Key: key, Optional: true})
	}
	return append(muts, Mutation{Op: Delete, Table: e.Table, KeyColumn: KeyField, Key: key})
}

// Lookup finds the entity of a list page.
func Lookup(kind string) (*Entity, bool) {
	for _, e := range entities {
		if string(e.Kind) == kind {
			return e, true
		}
	}
	return nil, false
}

// Entities returns every entity, in menu order.
func Entities() []*Entity {
	return entities
}
