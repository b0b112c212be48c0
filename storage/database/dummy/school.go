package dummydb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// item is a row with the values of its filter and ordering field paths.
type item struct {
	row    school.Row
	fields map[string][]interface{}
}

func (repo *schoolRepository) Query(_ context.Context, kind school.Kind, q listing.Query) ([]school.Row, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.db.checkOpen(); err != nil {
		return nil, 0, err
	}

	build, ok := builders[kind]
	if !ok {
		return nil, 0, fmt.Errorf("unknown list %q", kind)
	}
	t := repo.db.tables[tableOf[kind]]

	items := make([]item, 0, len(t.rows))
	for _, rec := range t.rows {
		it := build(repo.db, rec)
		if matches(it, q.Filter) {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j], q.Ordering) })

	start, end := q.Page.Slice(len(items))
	rows := make([]school.Row, 0, end-start)
	for _, it := range items[start:end] {
		rows = append(rows, it.row)
	}
	return rows, len(items), nil
}

func (repo *schoolRepository) Apply(_ context.Context, muts ...school.Mutation) ([]interface{}, error) {
	return repo.db.apply(muts...)
}

func matches(it item, filter listing.Filter) bool {
	for _, cond := range filter {
		if !matchesAny(it, cond) {
			return false
		}
	}
	return true
}

func matchesAny(it item, cond listing.Condition) bool {
	for _, field := range cond.Fields {
		for _, val := range it.fields[field] {
			switch cond.Op {
			case listing.ContainsFold:
				s, _ := val.(string)
				if strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(cond.Value))) {
					return true
				}
			default:
				if val == cond.Value {
					return true
				}
			}
		}
	}
	return false
}

func less(a, b item, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		c := compare(first(a.fields[ord.Field]), first(b.fields[ord.Field]))
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}

func first(vals []interface{}) interface{} {
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

// compare orders nil first, like NULLS FIRST.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case int:
		y, _ := b.(int)
		return x - y
	case string:
		y, _ := b.(string)
		return strings.Compare(x, y)
	case time.Time:
		y, _ := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

var tableOf = map[school.Kind]string{
	school.Teachers: "teacher",
	school.Students: "student",
	school.Parents:  "parent",
	school.Subjects: "subject",
	school.Classes:  "class",
	school.Lessons:  "lesson",
	school.Exams:    "exam",
}

var builders = map[school.Kind]func(db *DB, rec Record) item{
	school.Teachers: buildTeacher,
	school.Students: buildStudent,
	school.Parents:  buildParent,
	school.Subjects: buildSubject,
	school.Classes:  buildClass,
	school.Lessons:  buildLesson,
	school.Exams:    buildExam,
}

func (db *DB) get(tableName string, key interface{}) Record {
	return db.tables[tableName].rows[norm(key)]
}

// each calls fn for the records of a table whose column equals val, in key order.
func (db *DB) each(tableName, col string, val interface{}, fn func(rec Record)) {
	t := db.tables[tableName]
	keys := t.match(col, val)
	sort.Slice(keys, func(i, j int) bool { return compare(keys[i], keys[j]) < 0 })
	for _, k := range keys {
		fn(t.rows[k])
	}
}

func person(rec Record) school.Person {
	return school.Person{
		ID:        rec.stringAt("id"),
		Username:  rec.stringAt("username"),
		Name:      rec.stringAt("name"),
		Surname:   rec.stringAt("surname"),
		Email:     rec.stringAt("email"),
		Phone:     rec.stringAt("phone"),
		Address:   rec.stringAt("address"),
		Img:       rec.stringAt("img"),
		BloodType: rec.stringAt("blood_type"),
		Sex:       rec.stringAt("sex"),
		Birthday:  rec.timeAt("birthday"),
	}
}

func personFields(rec Record) map[string][]interface{} {
	return map[string][]interface{}{
		"id":         {norm(rec["id"])},
		"name":       {rec.stringAt("name")},
		"surname":    {rec.stringAt("surname")},
		"created_at": {norm(rec["created_at"])},
	}
}

func fullName(rec Record) string {
	if rec == nil {
		return ""
	}
	return school.JoinName(rec.stringAt("name"), rec.stringAt("surname"))
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func buildTeacher(db *DB, rec Record) item {
	t := school.Teacher{Person: person(rec)}
	fields := personFields(rec)
	db.each("lesson", "teacher_id", rec["id"], func(lsn Record) {
		if sub := db.get("subject", lsn["subject_id"]); sub != nil {
			t.Subjects = appendUnique(t.Subjects, sub.stringAt("name"))
		}
		if cls := db.get("class", lsn["class_id"]); cls != nil {
			t.Classes = appendUnique(t.Classes, cls.stringAt("name"))
		}
		fields["lessons.class_id"] = append(fields["lessons.class_id"], norm(lsn["class_id"]))
	})
	sort.Strings(t.Subjects)
	sort.Strings(t.Classes)
	return item{row: t, fields: fields}
}

func buildStudent(db *DB, rec Record) item {
	s := school.Student{Person: person(rec), ParentID: rec.stringAt("parent_id"), ClassID: rec.intAt("class_id")}
	fields := personFields(rec)
	fields["class_id"] = []interface{}{s.ClassID}
	if cls := db.get("class", rec["class_id"]); cls != nil {
		s.ClassName = cls.stringAt("name")
		s.Grade = cls.intAt("grade")
	}
	db.each("lesson", "class_id", rec["class_id"], func(lsn Record) {
		fields["class.lessons.teacher_id"] = append(fields["class.lessons.teacher_id"], lsn.stringAt("teacher_id"))
	})
	return item{row: s, fields: fields}
}

func buildParent(db *DB, rec Record) item {
	p := school.Parent{Person: person(rec)}
	db.each("student", "parent_id", rec["id"], func(std Record) {
		p.Students = append(p.Students, fullName(std))
	})
	return item{row: p, fields: personFields(rec)}
}

func buildSubject(db *DB, rec Record) item {
	s := school.Subject{ID: rec.intAt("id"), Name: rec.stringAt("name")}
	db.each("lesson", "subject_id", rec["id"], func(lsn Record) {
		if tch := db.get("teacher", lsn["teacher_id"]); tch != nil {
			s.Teachers = appendUnique(s.Teachers, fullName(tch))
		}
	})
	sort.Strings(s.Teachers)
	return item{row: s, fields: map[string][]interface{}{
		"id":   {s.ID},
		"name": {s.Name},
	}}
}

func buildClass(db *DB, rec Record) item {
	c := school.Class{
		ID:           rec.intAt("id"),
		Name:         rec.stringAt("name"),
		Capacity:     rec.intAt("capacity"),
		Grade:        rec.intAt("grade"),
		SupervisorID: rec.stringAt("supervisor_id"),
	}
	c.SupervisorName = fullName(db.get("teacher", rec["supervisor_id"]))
	return item{row: c, fields: map[string][]interface{}{
		"id":            {c.ID},
		"name":          {c.Name},
		"capacity":      {c.Capacity},
		"grade":         {c.Grade},
		"supervisor_id": {norm(rec["supervisor_id"])},
	}}
}

func lesson(db *DB, rec Record) school.Lesson {
	l := school.Lesson{
		ID:        rec.intAt("id"),
		Name:      rec.stringAt("name"),
		Day:       rec.stringAt("day"),
		StartTime: rec.timeAt("start_time"),
		EndTime:   rec.timeAt("end_time"),
		SubjectID: rec.intAt("subject_id"),
		ClassID:   rec.intAt("class_id"),
		TeacherID: rec.stringAt("teacher_id"),
	}
	if sub := db.get("subject", rec["subject_id"]); sub != nil {
		l.SubjectName = sub.stringAt("name")
	}
	if cls := db.get("class", rec["class_id"]); cls != nil {
		l.ClassName = cls.stringAt("name")
	}
	l.TeacherName = fullName(db.get("teacher", rec["teacher_id"]))
	return l
}

func buildLesson(db *DB, rec Record) item {
	l := lesson(db, rec)
	var teacherName string
	if tch := db.get("teacher", rec["teacher_id"]); tch != nil {
		teacherName = tch.stringAt("name")
	}
	return item{row: l, fields: map[string][]interface{}{
		"id":           {l.ID},
		"name":         {l.Name},
		"day":          {l.Day},
		"start_time":   {l.StartTime},
		"teacher_id":   {l.TeacherID},
		"class_id":     {l.ClassID},
		"subject.name": {l.SubjectName},
		"teacher.name": {teacherName},
	}}
}

func buildExam(db *DB, rec Record) item {
	e := school.Exam{
		ID:        rec.intAt("id"),
		Title:     rec.stringAt("title"),
		StartTime: rec.timeAt("start_time"),
		EndTime:   rec.timeAt("end_time"),
		LessonID:  rec.intAt("lesson_id"),
	}
	if lsnRec := db.get("lesson", rec["lesson_id"]); lsnRec != nil {
		l := lesson(db, lsnRec)
		e.SubjectName = l.SubjectName
		e.ClassID = l.ClassID
		e.ClassName = l.ClassName
		e.TeacherID = l.TeacherID
		e.TeacherName = l.TeacherName
	}
	return item{row: e, fields: map[string][]interface{}{
		"id":                  {e.ID},
		"title":               {e.Title},
		"start_time":          {e.StartTime},
		"lesson.teacher_id":   {e.TeacherID},
		"lesson.class_id":     {e.ClassID},
		"lesson.subject.name": {e.SubjectName},
	}}
}
