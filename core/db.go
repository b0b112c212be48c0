package core

import (
	"context"
	"database/sql"
	"strings"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

// DBOrdering is one term of an ORDER BY clause; Field is a field path of the listed entity.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy joins orderings into an ORDER BY list, mapping each field through expr.
func OrderBy(ordering []DBOrdering, expr func(field string) string) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		terms = append(terms, DBOrdering{Field: expr(ord.Field), Ascending: ord.Ascending}.String())
	}
	return strings.Join(terms, ", ")
}
