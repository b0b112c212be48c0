package dummydb

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/school"
)

func mustInsert(t *testing.T, db *DB, table string, rec Record) interface{} {
	key, err := db.Insert(table, rec)
	if err != nil {
		t.Fatalf("Insert(%s) failed: %v", table, err)
	}
	return key
}

func seed(t *testing.T, exams int) *DB {
	db, _ := Open()
	for _, id := range []string{"t-1", "t-2"} {
		mustInsert(t, db, "teacher", Record{"id": id, "username": id, "name": "Teacher", "surname": id})
	}
	cls := mustInsert(t, db, "class", Record{"name": "1A", "capacity": 20, "grade": 1, "supervisor_id": null.StringFrom("t-1")})
	algebra := mustInsert(t, db, "subject", Record{"name": "Algebra"})
	history := mustInsert(t, db, "subject", Record{"name": "History"})
	l1 := mustInsert(t, db, "lesson", Record{"name": "L1", "subject_id": algebra, "class_id": cls, "teacher_id": "t-1"})
	l2 := mustInsert(t, db, "lesson", Record{"name": "L2", "subject_id": history, "class_id": cls, "teacher_id": "t-2"})

	start := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < exams; i++ {
		lsn := l1
		if i%3 == 2 {
			lsn = l2
		}
		mustInsert(t, db, "exam", Record{
			"title":      fmt.Sprintf("Exam %d", i),
			"start_time": start.Add(time.Duration(i%4) * 24 * time.Hour), // duplicate dates
			"end_time":   start.Add(time.Hour),
			"lesson_id":  lsn,
		})
	}
	return db
}

func listExams(t *testing.T, repo school.Repository, query string) ([]school.Row, int) {
	ent, _ := school.Lookup(string(school.Exams))
	params, _ := url.ParseQuery(query)
	q, err := listing.Parse(params, ent.Filters, ent.Sorts, 10)
	if err != nil {
		t.Fatalf("listing.Parse() failed: %v", err)
	}
	rows, count, err := repo.Query(context.Background(), school.Exams, q)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	return rows, count
}

func TestSchoolRepository_Query_pagination(t *testing.T) {
	repo := NewSchoolRepository(seed(t, 15))

	rows, count := listExams(t, repo, "page=2")
	assert.Equal(t, 15, count)
	assert.Len(t, rows, 5)

	rows, count = listExams(t, repo, "page=3")
	assert.Equal(t, 15, count)
	assert.Len(t, rows, 0)

	// pages are disjoint and cover the whole list despite duplicate start times
	seen := make(map[string]bool)
	for page := 1; page <= 2; page++ {
		rows, _ := listExams(t, repo, fmt.Sprintf("page=%d", page))
		for _, r := range rows {
			assert.False(t, seen[r.Key()], "row %s on two pages", r.Key())
			seen[r.Key()] = true
		}
	}
	assert.Len(t, seen, 15)
}

func TestSchoolRepository_Query_filters(t *testing.T) {
	repo := NewSchoolRepository(seed(t, 15))

	tests := []struct {
		query     string
		wantCount int
	}{
		{query: "", wantCount: 15},
		{query: "lol=1", wantCount: 15},
		{query: "search=algebra", wantCount: 10},
		{query: "search=ALGEB", wantCount: 10},
		{query: "search=histo", wantCount: 5},
		{query: "teacherId=t-2", wantCount: 5},
		{query: "teacherId=t-2&search=algebra", wantCount: 0},
		{query: "classId=1", wantCount: 15},
		{query: "classId=2", wantCount: 0},
		{query: "search=", wantCount: 15},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, count := listExams(t, repo, tt.query)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestSchoolRepository_Query_rows(t *testing.T) {
	db := seed(t, 1)
	repo := NewSchoolRepository(db)

	rows, _ := listExams(t, repo, "")
	if assert.Len(t, rows, 1) {
		exam := rows[0].(school.Exam)
		assert.Equal(t, "Algebra", exam.SubjectName)
		assert.Equal(t, "1A", exam.ClassName)
		assert.Equal(t, "Teacher t-1", exam.TeacherName)
		assert.Equal(t, []string{"Algebra", "1A", "Teacher t-1", "10/1/2024"}, exam.Cells())
	}

	ent, _ := school.Lookup(string(school.Teachers))
	q, _ := listing.Parse(url.Values{"classId": {"1"}}, ent.Filters, ent.Sorts, 10)
	rows, count, err := repo.Query(context.Background(), school.Teachers, q)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, []string{"Algebra"}, rows[0].(school.Teacher).Subjects)
		assert.Equal(t, []string{"1A"}, rows[0].(school.Teacher).Classes)
	}
}

func TestSchoolRepository_Apply(t *testing.T) {
	db := seed(t, 0)
	repo := NewSchoolRepository(db)
	ctx := context.Background()

	t.Run("insert assigns serial keys", func(t *testing.T) {
		keys, err := repo.Apply(ctx, school.Mutation{Op: school.Insert, Table: "subject", KeyColumn: "id", Set: []school.Assignment{{Column: "name", Value: "Biology"}}})
		assert.NoError(t, err)
		assert.Equal(t, []interface{}{3}, keys)
	})

	t.Run("unique violation", func(t *testing.T) {
		_, err := repo.Apply(ctx, school.Mutation{Op: school.Insert, Table: "subject", KeyColumn: "id", Set: []school.Assignment{{Column: "name", Value: "Algebra"}}})
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "got %v", err)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := repo.Apply(ctx, school.Mutation{
			Op: school.Insert, Table: "exam", KeyColumn: "id",
			Set: []school.Assignment{{Column: "title", Value: "x"}, {Column: "lesson_id", Value: 99}},
		})
		verr, ok := err.(*core.ValidationError)
		if assert.True(t, ok, "got %v", err) {
			assert.Contains(t, verr.FieldMap(), "lessonId")
		}
	})

	t.Run("failed mutations roll back", func(t *testing.T) {
		before := db.Count("subject")
		_, err := repo.Apply(ctx,
			school.Mutation{Op: school.Insert, Table: "subject", KeyColumn: "id", Set: []school.Assignment{{Column: "name", Value: "Physics"}}},
			school.Mutation{Op: school.Update, Table: "subject", KeyColumn: "id", Key: 999, Set: []school.Assignment{{Column: "name", Value: "x"}}},
		)
		assert.Equal(t, school.ErrNotFound, err)
		assert.Equal(t, before, db.Count("subject"))
	})

	t.Run("optional mutation may match nothing", func(t *testing.T) {
		_, err := repo.Apply(ctx, school.Mutation{Op: school.Delete, Table: school.AccountTable, KeyColumn: "person_id", Key: "nobody", Optional: true})
		assert.NoError(t, err)
	})

	t.Run("referenced rows cannot be deleted", func(t *testing.T) {
		_, err := repo.Apply(ctx, school.Mutation{Op: school.Delete, Table: "subject", KeyColumn: "id", Key: 1})
		assert.Equal(t, school.ErrInUse, err)
	})
}

func TestDB_Close(t *testing.T) {
	ctx := context.Background()
	db := seed(t, 3)
	repo := NewSchoolRepository(db)
	assert.NoError(t, db.Close())

	_, _, err := repo.Query(ctx, school.Subjects, listing.Query{Page: listing.Page{Number: 1, Size: 10}})
	assert.True(t, core.IsShutdown(err), "got %v", err)

	_, err = repo.Apply(ctx, school.Mutation{Op: school.Delete, Table: "subject", KeyColumn: "id", Key: 1})
	assert.True(t, core.IsShutdown(err), "got %v", err)

	_, err = db.Insert("subject", Record{"name": "Algebra"})
	assert.True(t, core.IsShutdown(err), "got %v", err)
	assert.Equal(t, 0, db.Count("subject"))
}
