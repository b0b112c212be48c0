package school

import (
	"fmt"
	"strings"

	"github.com/trezcool/schooldash/core"
)

// AccountTable holds the login accounts of people.
const AccountTable = "app_user"

type MutationOp int

const (
	Insert MutationOp = iota
	Update
	Delete
)

// Assignment sets one column.
type Assignment struct {
	Column string
	Value  interface{}
}

// Mutation is one write of a form submission. Mutations of a submission are applied in one transaction.
type Mutation struct {
	Op        MutationOp
	Table     string
	KeyColumn string
	Key       interface{} // nil on Insert lets the store assign it
	Set       []Assignment
	Optional  bool // may match no row without failing
}

func (m Mutation) Columns() []string {
	cols := make([]string, 0, len(m.Set))
	for _, a := range m.Set {
		cols = append(cols, a.Column)
	}
	return cols
}

func (m Mutation) Values() []interface{} {
	vals := make([]interface{}, 0, len(m.Set))
	for _, a := range m.Set {
		vals = append(vals, a.Value)
	}
	return vals
}

var personColumnFields = map[string]string{
	"name":    "firstName",
	"surname": "lastName",
}

// FieldForColumn maps a table column back to its form field.
func FieldForColumn(table, column string) string {
	switch table {
	case "teacher", "student", "parent", AccountTable:
		if f, ok := personColumnFields[column]; ok {
			return f
		}
	}
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// UniqueViolation reports a value the store already holds.
func UniqueViolation(table, column string) error {
	field := FieldForColumn(table, column)
	return core.NewValidationError(
		fmt.Errorf("%s.%s already exists", table, column),
		core.FieldError{Field: field, Error: fmt.Sprintf("%s already exists!", core.Label(field))},
	)
}

// MissingReference reports a foreign key pointing nowhere.
func MissingReference(table, column string) error {
	field := FieldForColumn(table, column)
	return core.NewValidationError(
		fmt.Errorf("%s.%s references a missing record", table, column),
		core.FieldError{Field: field, Error: fmt.Sprintf("%s does not exist!", core.Label(field))},
	)
}

// ConstraintColumn extracts the column of a default-named constraint ({table}_{column}_key|fkey).
func ConstraintColumn(table, constraint string) string {
	col := strings.TrimPrefix(constraint, table+"_")
	for _, suffix := range []string{"_fkey", "_key"} {
		if strings.HasSuffix(col, suffix) {
			return strings.TrimSuffix(col, suffix)
		}
	}
	return col
}
