package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
	"github.com/trezcool/schooldash/core/user"
	appfs "github.com/trezcool/schooldash/fs"
	emailsvc "github.com/trezcool/schooldash/services/email"
	logsvc "github.com/trezcool/schooldash/services/logger"
	"github.com/trezcool/schooldash/storage/database/dummy"
)

func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "SchoolDash",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret",
		LogLevel:         "error",
		DefaultFromEmail: "SchoolDash <noreply@school.test>",
		Server:           core.ServerConfig{JWTExpirationDelta: time.Hour},
		Listing:          core.ListingConfig{PageSize: 10, ExportLimit: 100},
	}
}

// NewLogger discards everything and never reports to rollbar.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(io.Discard, conf), conf)
	logger.Enable(false)
	return logger
}

// NewMailer returns a synchronous mailer with the email templates parsed.
func NewMailer(conf *core.Config) *emailsvc.ConsoleServiceMock {
	logger := NewLogger(conf)
	core.ParseEmailTemplates(appfs.FS, logger, true)
	return emailsvc.NewConsoleServiceMock(conf, logger)
}

// NewValidator returns a validator with every form rule and message registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd, role string, isActive bool, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func insert(t *testing.T, db *dummydb.DB, table string, rec dummydb.Record) interface{} {
	key, err := db.Insert(table, rec)
	if err != nil {
		t.Fatalf("inserting into %s failed: %v", table, err)
	}
	return key
}

func person(id, uname, name, surname string) dummydb.Record {
	return dummydb.Record{
		"id":         id,
		"username":   uname,
		"name":       name,
		"surname":    surname,
		"email":      null.StringFrom(uname + "@school.test"),
		"phone":      null.StringFrom("+1-555-" + uname),
		"address":    "1 School Road",
		"img":        null.String{},
		"blood_type": "O+",
		"sex":        "female",
		"birthday":   time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		"created_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// School is a small seeded dataset.
type School struct {
	DB *dummydb.DB

	Teachers []string // ids
	Parent   string
	Student  string
	Classes  []int
	Subjects []int
	Lessons  []int
}

// SeedSchool creates two teachers, two classes, two subjects and a lesson for each,
// plus a parent with one student in the first class.
func SeedSchool(t *testing.T, db *dummydb.DB) *School {
	s := &School{DB: db}

	s.Teachers = []string{"t-1", "t-2"}
	insert(t, db, "teacher", person("t-1", "jdoe", "John", "Doe"))
	insert(t, db, "teacher", person("t-2", "aroe", "Ann", "Roe"))

	s.Parent = "p-1"
	insert(t, db, "parent", person("p-1", "mdoe", "Mary", "Doe"))

	for i, name := range []string{"1A", "2B"} {
		key := insert(t, db, "class", dummydb.Record{
			"name":          name,
			"capacity":      30,
			"grade":         i + 1,
			"supervisor_id": null.StringFrom(s.Teachers[i]),
		})
		s.Classes = append(s.Classes, key.(int))
	}
	for _, name := range []string{"Algebra", "History"} {
		key := insert(t, db, "subject", dummydb.Record{"name": name})
		s.Subjects = append(s.Subjects, key.(int))
	}
	for i := range s.Teachers {
		key := insert(t, db, "lesson", dummydb.Record{
			"name":       fmt.Sprintf("Lesson %d", i+1),
			"day":        "MONDAY",
			"start_time": time.Date(2024, 9, 2, 8+i, 0, 0, 0, time.UTC),
			"end_time":   time.Date(2024, 9, 2, 9+i, 0, 0, 0, time.UTC),
			"subject_id": s.Subjects[i],
			"class_id":   s.Classes[i],
			"teacher_id": s.Teachers[i],
		})
		s.Lessons = append(s.Lessons, key.(int))
	}

	s.Student = "s-1"
	std := person("s-1", "kdoe", "Kid", "Doe")
	std["parent_id"] = s.Parent
	std["class_id"] = s.Classes[0]
	insert(t, db, "student", std)
	return s
}

// SeedExams adds n exams to a lesson, one day apart.
func (s *School) SeedExams(t *testing.T, lessonID, n int) []int {
	ids := make([]int, 0, n)
	start := time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		key := insert(t, s.DB, "exam", dummydb.Record{
			"title":      fmt.Sprintf("Exam %02d", i+1),
			"start_time": start.AddDate(0, 0, i),
			"end_time":   start.AddDate(0, 0, i).Add(time.Hour),
			"lesson_id":  lessonID,
		})
		ids = append(ids, key.(int))
	}
	return ids
}
