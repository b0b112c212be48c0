package boiledrepos

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
)

// aggregate concatenates the distinct values of a correlated subquery.
func aggregate(expr, from string) string {
	return "COALESCE((SELECT string_agg(DISTINCT " + expr + ", ', ' ORDER BY " + expr + ") FROM " + from + "), '')"
}

func split(agg string) []string {
	if agg == "" {
		return nil
	}
	return strings.Split(agg, ", ")
}

func personSelects(table string) []string {
	cols := []string{"id", "username", "name", "surname", "email", "phone", "address", "img", "blood_type", "sex", "birthday"}
	selects := make([]string, 0, len(cols))
	for _, c := range cols {
		selects = append(selects, `"`+table+`".`+c+" AS "+c)
	}
	return selects
}

func personColumns(table string) map[string]column {
	return map[string]column{
		"id":         {expr: `"` + table + `".id`},
		"name":       {expr: `"` + table + `".name`},
		"surname":    {expr: `"` + table + `".surname`},
		"created_at": {expr: `"` + table + `".created_at`},
	}
}

type personRow struct {
	ID        string      `boil:"id"`
	Username  string      `boil:"username"`
	Name      string      `boil:"name"`
	Surname   string      `boil:"surname"`
	Email     null.String `boil:"email"`
	Phone     null.String `boil:"phone"`
	Address   string      `boil:"address"`
	Img       null.String `boil:"img"`
	BloodType string      `boil:"blood_type"`
	Sex       string      `boil:"sex"`
	Birthday  time.Time   `boil:"birthday"`
}

func (r personRow) unboil() school.Person {
	return school.Person{
		ID:        r.ID,
		Username:  r.Username,
		Name:      r.Name,
		Surname:   r.Surname,
		Email:     r.Email.String,
		Phone:     r.Phone.String,
		Address:   r.Address,
		Img:       r.Img.String,
		BloodType: r.BloodType,
		Sex:       r.Sex,
		Birthday:  r.Birthday,
	}
}

type teacherRow struct {
	personRow `boil:",bind"`
	Subjects  string `boil:"subjects"`
	Classes   string `boil:"classes"`
}

type studentRow struct {
	personRow `boil:",bind"`
	ParentID  string      `boil:"parent_id"`
	ClassID   int         `boil:"class_id"`
	ClassName null.String `boil:"class_name"`
	Grade     null.Int    `boil:"grade"`
}

type parentRow struct {
	personRow `boil:",bind"`
	Students  string `boil:"students"`
}

type subjectRow struct {
	ID       int    `boil:"id"`
	Name     string `boil:"name"`
	Teachers string `boil:"teachers"`
}

type classRow struct {
	ID             int         `boil:"id"`
	Name           string      `boil:"name"`
	Capacity       int         `boil:"capacity"`
	Grade          int         `boil:"grade"`
	SupervisorID   null.String `boil:"supervisor_id"`
	SupervisorName string      `boil:"supervisor_name"`
}

type lessonRow struct {
	ID          int       `boil:"id"`
	Name        string    `boil:"name"`
	Day         string    `boil:"day"`
	StartTime   time.Time `boil:"start_time"`
	EndTime     time.Time `boil:"end_time"`
	SubjectID   int       `boil:"subject_id"`
	SubjectName string    `boil:"subject_name"`
	ClassID     int       `boil:"class_id"`
	ClassName   string    `boil:"class_name"`
	TeacherID   string    `boil:"teacher_id"`
	TeacherName string    `boil:"teacher_name"`
}

type examRow struct {
	ID          int       `boil:"id"`
	Title       string    `boil:"title"`
	StartTime   time.Time `boil:"start_time"`
	EndTime     time.Time `boil:"end_time"`
	LessonID    int       `boil:"lesson_id"`
	SubjectName string    `boil:"subject_name"`
	ClassID     int       `boil:"class_id"`
	ClassName   string    `boil:"class_name"`
	TeacherID   string    `boil:"teacher_id"`
	TeacherName string    `boil:"teacher_name"`
}

const teacherFullName = `"teacher".name || ' ' || "teacher".surname`

var teachersDef = &listDef{
	from: `"teacher"`,
	selects: append(personSelects("teacher"),
		aggregate("s.name", `"lesson" l JOIN "subject" s ON s.id = l.subject_id WHERE l.teacher_id = "teacher".id`)+" AS subjects",
		aggregate("c.name", `"lesson" l JOIN "class" c ON c.id = l.class_id WHERE l.teacher_id = "teacher".id`)+" AS classes",
	),
	columns: merge(personColumns("teacher"), map[string]column{
		"lessons.class_id": {expr: "l.class_id", exists: `EXISTS (SELECT 1 FROM "lesson" l WHERE l.teacher_id = "teacher".id AND %s)`},
	}),
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []teacherRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Teacher{Person: r.unboil(), Subjects: split(r.Subjects), Classes: split(r.Classes)})
		}
		return rows, nil
	},
}

var studentsDef = &listDef{
	from: `"student" LEFT JOIN "class" ON "class".id = "student".class_id`,
	selects: append(personSelects("student"),
		`"student".parent_id AS parent_id`,
		`"student".class_id AS class_id`,
		`"class".name AS class_name`,
		`"class".grade AS grade`,
	),
	columns: merge(personColumns("student"), map[string]column{
		"class_id":                 {expr: `"student".class_id`},
		"class.lessons.teacher_id": {expr: "l.teacher_id", exists: `EXISTS (SELECT 1 FROM "lesson" l WHERE l.class_id = "student".class_id AND %s)`},
	}),
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []studentRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Student{
				Person:    r.unboil(),
				ParentID:  r.ParentID,
				ClassID:   r.ClassID,
				ClassName: r.ClassName.String,
				Grade:     r.Grade.Int,
			})
		}
		return rows, nil
	},
}

var parentsDef = &listDef{
	from: `"parent"`,
	selects: append(personSelects("parent"),
		aggregate(`st.name || ' ' || st.surname`, `"student" st WHERE st.parent_id = "parent".id`)+" AS students",
	),
	columns: personColumns("parent"),
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []parentRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Parent{Person: r.unboil(), Students: split(r.Students)})
		}
		return rows, nil
	},
}

var subjectsDef = &listDef{
	from: `"subject"`,
	selects: []string{
		`"subject".id AS id`,
		`"subject".name AS name`,
		aggregate(`t.name || ' ' || t.surname`, `"lesson" l JOIN "teacher" t ON t.id = l.teacher_id WHERE l.subject_id = "subject".id`) + " AS teachers",
	},
	columns: map[string]column{
		"id":   {expr: `"subject".id`},
		"name": {expr: `"subject".name`},
	},
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []subjectRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Subject{ID: r.ID, Name: r.Name, Teachers: split(r.Teachers)})
		}
		return rows, nil
	},
}

var classesDef = &listDef{
	from: `"class" LEFT JOIN "teacher" ON "teacher".id = "class".supervisor_id`,
	selects: []string{
		`"class".id AS id`,
		`"class".name AS name`,
		`"class".capacity AS capacity`,
		`"class".grade AS grade`,
		`"class".supervisor_id AS supervisor_id`,
		"COALESCE(" + teacherFullName + ", '') AS supervisor_name",
	},
	columns: map[string]column{
		"id":            {expr: `"class".id`},
		"name":          {expr: `"class".name`},
		"capacity":      {expr: `"class".capacity`},
		"grade":         {expr: `"class".grade`},
		"supervisor_id": {expr: `"class".supervisor_id`},
	},
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []classRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Class{
				ID:             r.ID,
				Name:           r.Name,
				Capacity:       r.Capacity,
				Grade:          r.Grade,
				SupervisorID:   r.SupervisorID.String,
				SupervisorName: r.SupervisorName,
			})
		}
		return rows, nil
	},
}

const lessonJoins = `JOIN "subject" ON "subject".id = "lesson".subject_id ` +
	`JOIN "class" ON "class".id = "lesson".class_id ` +
	`JOIN "teacher" ON "teacher".id = "lesson".teacher_id`

var lessonsDef = &listDef{
	from: `"lesson" ` + lessonJoins,
	selects: []string{
		`"lesson".id AS id`,
		`"lesson".name AS name`,
		`"lesson".day AS day`,
		`"lesson".start_time AS start_time`,
		`"lesson".end_time AS end_time`,
		`"lesson".subject_id AS subject_id`,
		`"subject".name AS subject_name`,
		`"lesson".class_id AS class_id`,
		`"class".name AS class_name`,
		`"lesson".teacher_id AS teacher_id`,
		teacherFullName + " AS teacher_name",
	},
	columns: map[string]column{
		"id":           {expr: `"lesson".id`},
		"name":         {expr: `"lesson".name`},
		"day":          {expr: `"lesson".day`},
		"start_time":   {expr: `"lesson".start_time`},
		"teacher_id":   {expr: `"lesson".teacher_id`},
		"class_id":     {expr: `"lesson".class_id`},
		"subject.name": {expr: `"subject".name`},
		"teacher.name": {expr: `"teacher".name`},
	},
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []lessonRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Lesson(r))
		}
		return rows, nil
	},
}

var examsDef = &listDef{
	from: `"exam" JOIN "lesson" ON "lesson".id = "exam".lesson_id ` + lessonJoins,
	selects: []string{
		`"exam".id AS id`,
		`"exam".title AS title`,
		`"exam".start_time AS start_time`,
		`"exam".end_time AS end_time`,
		`"exam".lesson_id AS lesson_id`,
		`"subject".name AS subject_name`,
		`"lesson".class_id AS class_id`,
		`"class".name AS class_name`,
		`"lesson".teacher_id AS teacher_id`,
		teacherFullName + " AS teacher_name",
	},
	columns: map[string]column{
		"id":                  {expr: `"exam".id`},
		"title":               {expr: `"exam".title`},
		"start_time":          {expr: `"exam".start_time`},
		"lesson.teacher_id":   {expr: `"lesson".teacher_id`},
		"lesson.class_id":     {expr: `"lesson".class_id`},
		"lesson.subject.name": {expr: `"subject".name`},
	},
	fetch: func(ctx context.Context, q *queries.Query, exec core.DBExecutor) ([]school.Row, error) {
		var recs []examRow
		if err := q.Bind(ctx, exec, &recs); err != nil {
			return nil, err
		}
		rows := make([]school.Row, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, school.Exam(r))
		}
		return rows, nil
	},
}

var listDefs = map[school.Kind]*listDef{
	school.Teachers: teachersDef,
	school.Students: studentsDef,
	school.Parents:  parentsDef,
	school.Subjects: subjectsDef,
	school.Classes:  classesDef,
	school.Lessons:  lessonsDef,
	school.Exams:    examsDef,
}

func merge(maps ...map[string]column) map[string]column {
	merged := make(map[string]column)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
