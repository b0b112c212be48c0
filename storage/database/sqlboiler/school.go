package boiledrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/school"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var dialect = drivers.Dialect{LQ: '"', RQ: '"', UseIndexPlaceholders: true}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

// listQuery builds the fetch query of a list page, or its count query.
func listQuery(def *listDef, lq listing.Query, count bool) (*queries.Query, error) {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)

	mods := []qm.QueryMod{qm.From(def.from)}
	for _, cond := range lq.Filter {
		mod, err := def.where(cond)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}

	if count {
		qm.Apply(q, mods...)
		queries.SetCount(q)
		return q, nil
	}

	orderBy, err := def.orderBy(lq.Ordering)
	if err != nil {
		return nil, err
	}
	mods = append(mods,
		qm.Select(def.selects...),
		qm.OrderBy(orderBy),
		qm.Limit(lq.Page.Size),
		qm.Offset(lq.Page.Offset()),
	)
	qm.Apply(q, mods...)
	return q, nil
}

func (repo *schoolRepository) Query(ctx context.Context, kind school.Kind, lq listing.Query) (rows []school.Row, count int, err error) {
	def, ok := listDefs[kind]
	if !ok {
		return nil, 0, fmt.Errorf("unknown list %q", kind)
	}
	countQ, err := listQuery(def, lq, true)
	if err != nil {
		return nil, 0, err
	}
	fetchQ, err := listQuery(def, lq, false)
	if err != nil {
		return nil, 0, err
	}

	tx, err := repo.begin(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err = countQ.QueryRowContext(ctx, tx).Scan(&count); err != nil {
		return nil, 0, errors.Wrapf(err, "counting %s", kind)
	}
	if count > lq.Page.Offset() {
		if rows, err = def.fetch(ctx, fetchQ, tx); err != nil {
			return nil, 0, errors.Wrapf(err, "fetching %s", kind)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, 0, errors.Wrap(err, "committing transaction")
	}
	return rows, count, nil
}

func (repo *schoolRepository) Apply(ctx context.Context, muts ...school.Mutation) ([]interface{}, error) {
	tx, err := repo.begin(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]interface{}, 0, len(muts))
	for _, mut := range muts {
		key, err := applyOne(ctx, tx, mut)
		if err != nil {
			return nil, trapConstraintErr(err, mut)
		}
		keys = append(keys, key)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return keys, nil
}

// begin starts a transaction. When the database cannot even be pinged, the store is gone
// and the error asks the server to shut down.
func (repo *schoolRepository) begin(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	tx, err := repo.db.BeginTxx(ctx, opts)
	if err == nil {
		return tx, nil
	}
	if ctx.Err() == nil {
		if pingErr := repo.db.PingContext(ctx); pingErr != nil {
			return nil, core.NewShutdownError(fmt.Sprintf("database unreachable: %v", pingErr))
		}
	}
	return nil, errors.Wrap(err, "beginning transaction")
}

func applyOne(ctx context.Context, tx core.DBExecutor, mut school.Mutation) (interface{}, error) {
	table := strmangle.IdentQuote(dialect.LQ, dialect.RQ, mut.Table)
	keyCol := strmangle.IdentQuote(dialect.LQ, dialect.RQ, mut.KeyColumn)
	cols := mut.Columns()
	vals := mut.Values()

	switch mut.Op {
	case school.Insert:
		if mut.Key != nil {
			cols = append([]string{mut.KeyColumn}, cols...)
			vals = append([]interface{}{mut.Key}, vals...)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			table,
			strings.Join(strmangle.IdentQuoteSlice(dialect.LQ, dialect.RQ, cols), ", "),
			strmangle.Placeholders(dialect.UseIndexPlaceholders, len(cols), 1, 1),
			keyCol,
		)
		var key interface{}
		if err := tx.QueryRowContext(ctx, query, vals...).Scan(&key); err != nil {
			return nil, errors.Wrapf(err, "inserting into %s", mut.Table)
		}
		if n, ok := key.(int64); ok {
			return int(n), nil
		}
		return key, nil

	case school.Update:
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
			table,
			strmangle.SetParamNames(`"`, `"`, 1, cols),
			strmangle.WhereClause(`"`, `"`, len(cols)+1, []string{mut.KeyColumn}),
		)
		return mut.Key, execAffecting(ctx, tx, mut, query, append(vals, mut.Key)...)

	case school.Delete:
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, strmangle.WhereClause(`"`, `"`, 1, []string{mut.KeyColumn}))
		return mut.Key, execAffecting(ctx, tx, mut, query, mut.Key)
	}
	return nil, fmt.Errorf("unknown mutation %d", mut.Op)
}

// execAffecting fails with school.ErrNotFound when a non-optional mutation matches no row.
func execAffecting(ctx context.Context, tx core.DBExecutor, mut school.Mutation, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "mutating %s", mut.Table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 && !mut.Optional {
		return school.ErrNotFound
	}
	return nil
}

// trapConstraintErr maps constraint violations to field errors.
func trapConstraintErr(err error, mut school.Mutation) error {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pgUniqueViolation:
		return school.UniqueViolation(pqErr.Table, school.ConstraintColumn(pqErr.Table, pqErr.Constraint))
	case pgForeignKeyViolation:
		if mut.Op == school.Delete {
			return school.ErrInUse
		}
		return school.MissingReference(pqErr.Table, school.ConstraintColumn(pqErr.Table, pqErr.Constraint))
	}
	return err
}

// column is the SQL of a field path. A field reached through a to-many relation
// is tested inside an EXISTS subquery.
type column struct {
	expr   string
	exists string // "EXISTS (... AND %s)"
}

func (c column) predicate(op listing.Op) string {
	pred := c.expr + " = ?"
	if op == listing.ContainsFold {
		pred = c.expr + ` ILIKE ?`
	}
	if c.exists != "" {
		return fmt.Sprintf(c.exists, pred)
	}
	return pred
}

// listDef is the SQL side of a list page.
type listDef struct {
	from    string
	selects []string
	columns map[string]column // {field path: column}
	fetch   func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error)
}

func (def *listDef) column(path string) (column, error) {
	col, ok := def.columns[path]
	if !ok {
		return column{}, fmt.Errorf("unknown field %q", path)
	}
	return col, nil
}

func (def *listDef) where(cond listing.Condition) (qm.QueryMod, error) {
	preds := make([]string, 0, len(cond.Fields))
	args := make([]interface{}, 0, len(cond.Fields))
	for _, path := range cond.Fields {
		col, err := def.column(path)
		if err != nil {
			return nil, err
		}
		preds = append(preds, col.predicate(cond.Op))
		if cond.Op == listing.ContainsFold {
			args = append(args, "%"+likeEscaper.Replace(fmt.Sprint(cond.Value))+"%")
		} else {
			args = append(args, cond.Value)
		}
	}
	return qm.Where("("+strings.Join(preds, " OR ")+")", args...), nil
}

func (def *listDef) orderBy(ordering []core.DBOrdering) (string, error) {
	var err error
	clause := core.OrderBy(ordering, func(field string) string {
		col, e := def.column(field)
		if e != nil && err == nil {
			err = e
		}
		return col.expr
	})
	return clause, err
}
