package dummydb

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
)

type (
	// Record is one table row, keyed by column.
	Record map[string]interface{}

	table struct {
		name   string
		serial bool
		seq    int
		unique []string
		refs   map[string]string // {column: referenced table}
		rows   map[interface{}]Record
	}

	// DB is an in-memory store holding the dashboard schema.
	DB struct {
		sync.RWMutex
		tables map[string]*table
		closed bool
	}
)

var schema = []table{
	{name: school.AccountTable, serial: true, unique: []string{"username"}},
	{name: "teacher", unique: []string{"username", "email", "phone"}},
	{name: "parent", unique: []string{"username", "email", "phone"}},
	{name: "class", serial: true, unique: []string{"name"}, refs: map[string]string{"supervisor_id": "teacher"}},
	{
		name: "student", unique: []string{"username", "email", "phone"},
		refs: map[string]string{"parent_id": "parent", "class_id": "class"},
	},
	{name: "subject", serial: true, unique: []string{"name"}},
	{
		name: "lesson", serial: true,
		refs: map[string]string{"subject_id": "subject", "class_id": "class", "teacher_id": "teacher"},
	},
	{name: "exam", serial: true, refs: map[string]string{"lesson_id": "lesson"}},
}

func Open() (*DB, error) {
	db := &DB{tables: make(map[string]*table, len(schema))}
	for _, t := range schema {
		t := t
		t.rows = make(map[interface{}]Record)
		db.tables[t.name] = &t
	}
	return db, nil
}

// Close drops every table. A closed store fails with a shutdown error.
func (db *DB) Close() error {
	db.Lock()
	defer db.Unlock()
	db.closed = true
	db.tables = nil
	return nil
}

// checkOpen must be called with the lock held.
func (db *DB) checkOpen() error {
	if db.closed {
		return core.NewShutdownError("in-memory database is closed")
	}
	return nil
}

// Insert adds a record as is; a serial table assigns the id when the record has none.
func (db *DB) Insert(tableName string, rec Record) (interface{}, error) {
	keys, err := db.apply(school.Mutation{
		Op: school.Insert, Table: tableName, KeyColumn: school.KeyField, Key: rec[school.KeyField], Set: rec.assignments(),
	})
	if err != nil {
		return nil, err
	}
	return keys[0], nil
}

// Count returns the number of records in a table.
func (db *DB) Count(tableName string) int {
	db.RLock()
	defer db.RUnlock()
	if db.closed {
		return 0
	}
	return len(db.tables[tableName].rows)
}

func (rec Record) assignments() []school.Assignment {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		if col != school.KeyField {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	set := make([]school.Assignment, 0, len(cols))
	for _, col := range cols {
		set = append(set, school.Assignment{Column: col, Value: rec[col]})
	}
	return set
}

func (rec Record) clone() Record {
	c := make(Record, len(rec))
	for k, v := range rec {
		c[k] = v
	}
	return c
}

func (rec Record) stringAt(col string) string {
	s, _ := norm(rec[col]).(string)
	return s
}

func (rec Record) intAt(col string) int {
	n, _ := norm(rec[col]).(int)
	return n
}

func (rec Record) timeAt(col string) time.Time {
	t, _ := norm(rec[col]).(time.Time)
	return t
}

// norm unwraps nullable values; invalid ones become nil.
func norm(v interface{}) interface{} {
	switch n := v.(type) {
	case null.String:
		if !n.Valid {
			return nil
		}
		return n.String
	case null.Int:
		if !n.Valid {
			return nil
		}
		return n.Int
	case null.Time:
		if !n.Valid {
			return nil
		}
		return n.Time
	case int64:
		return int(n)
	}
	return v
}

func (t *table) snapshot() *table {
	c := *t
	c.rows = make(map[interface{}]Record, len(t.rows))
	for k, rec := range t.rows {
		c.rows[k] = rec.clone()
	}
	return &c
}

func (t *table) match(col string, key interface{}) []interface{} {
	if col == school.KeyField {
		if _, ok := t.rows[norm(key)]; ok {
			return []interface{}{norm(key)}
		}
		return nil
	}
	var keys []interface{}
	for k, rec := range t.rows {
		if norm(rec[col]) == norm(key) {
			keys = append(keys, k)
		}
	}
	return keys
}

// apply runs mutations atomically: on error, every table is restored.
func (db *DB) apply(muts ...school.Mutation) ([]interface{}, error) {
	db.Lock()
	defer db.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	backup := make(map[string]*table, len(db.tables))
	for name, t := range db.tables {
		backup[name] = t.snapshot()
	}

	keys := make([]interface{}, 0, len(muts))
	for _, mut := range muts {
		key, err := db.applyOne(mut)
		if err != nil {
			db.tables = backup
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (db *DB) applyOne(mut school.Mutation) (interface{}, error) {
	t, ok := db.tables[mut.Table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", mut.Table)
	}

	switch mut.Op {
	case school.Insert:
		key := norm(mut.Key)
		if key == nil {
			if !t.serial {
				return nil, fmt.Errorf("%s: missing primary key", t.name)
			}
			t.seq++
			key = t.seq
		}
		if _, exists := t.rows[key]; exists {
			return nil, school.UniqueViolation(t.name, school.KeyField)
		}
		if n, isInt := key.(int); isInt && n > t.seq {
			t.seq = n
		}
		rec := Record{school.KeyField: key}
		for _, a := range mut.Set {
			rec[a.Column] = a.Value
		}
		if err := db.check(t, key, rec); err != nil {
			return nil, err
		}
		t.rows[key] = rec
		return key, nil

	case school.Update:
		keys := t.match(mut.KeyColumn, mut.Key)
		if len(keys) == 0 {
			if mut.Optional {
				return nil, nil
			}
			return nil, school.ErrNotFound
		}
		for _, key := range keys {
			rec := t.rows[key].clone()
			for _, a := range mut.Set {
				rec[a.Column] = a.Value
			}
			if err := db.check(t, key, rec); err != nil {
				return nil, err
			}
			t.rows[key] = rec
		}
		return keys[0], nil

	case school.Delete:
		keys := t.match(mut.KeyColumn, mut.Key)
		if len(keys) == 0 {
			if mut.Optional {
				return nil, nil
			}
			return nil, school.ErrNotFound
		}
		for _, key := range keys {
			if db.referenced(t.name, key) {
				return nil, school.ErrInUse
			}
			delete(t.rows, key)
		}
		return keys[0], nil
	}
	return nil, fmt.Errorf("unknown mutation %d", mut.Op)
}

// check enforces the unique and foreign key constraints of a record.
func (db *DB) check(t *table, key interface{}, rec Record) error {
	for _, col := range t.unique {
		val := norm(rec[col])
		if val == nil {
			continue
		}
		for k, other := range t.rows {
			if k != key && norm(other[col]) == val {
				return school.UniqueViolation(t.name, col)
			}
		}
	}
	for col, ref := range t.refs {
		val := norm(rec[col])
		if val == nil {
			continue
		}
		if _, ok := db.tables[ref].rows[val]; !ok {
			return school.MissingReference(t.name, col)
		}
	}
	return nil
}

func (db *DB) referenced(tableName string, key interface{}) bool {
	for _, t := range db.tables {
		for col, ref := range t.refs {
			if ref == tableName && len(t.match(col, key)) > 0 {
				return true
			}
		}
	}
	return false
}
