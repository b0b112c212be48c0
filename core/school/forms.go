package school

import (
	"mime/multipart"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/user"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
	ModeDelete Mode = "delete"
)

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeCreate, ModeUpdate, ModeDelete:
		return m, true
	}
	return "", false
}

// Form is the payload of a create or update Form Modal.
type Form interface {
	SetMode(m Mode)
	// SetImage attaches the uploaded image; forms without an image ignore it.
	SetImage(fh *multipart.FileHeader)

	clean()
	image() *multipart.FileHeader
	mutations(table string, key interface{}, img string, now time.Time) ([]Mutation, error)
}

type formBase struct {
	Mode Mode `json:"-" form:"-" validate:"-"`
}

func (f *formBase) SetMode(m Mode)                 { f.Mode = m }
func (f *formBase) SetImage(*multipart.FileHeader) {}
func (f *formBase) image() *multipart.FileHeader   { return nil }

// PersonForm is shared by teachers, students and parents.
type PersonForm struct {
	formBase

	// Authentication Information
	Username string `json:"username" form:"username" label:"User name" validate:"min=3,max=20"`
	Email    string `json:"email" form:"email" label:"Email" validate:"omitempty,email"`
	Password string `json:"password" form:"password" label:"Password" validate:"omitempty,min=8"`

	// Personal Information
	FirstName string                `json:"firstName" form:"firstName" label:"First Name" validate:"required"`
	LastName  string                `json:"lastName" form:"lastName" label:"Last Name" validate:"required"`
	Phone     string                `json:"phone" form:"phone" label:"Phone" validate:"required"`
	Address   string                `json:"address" form:"address" label:"Address" validate:"required"`
	BloodType string                `json:"bloodType" form:"bloodType" label:"Blood Type" validate:"required"`
	Birthday  string                `json:"birthday" form:"birthday" label:"Birthday" validate:"required,datetime=2006-01-02"`
	Sex       string                `json:"sex" form:"sex" label:"Sex" validate:"oneof=male female"`
	Img       *multipart.FileHeader `json:"img" form:"-" label:"Image" validate:"-"`
}

func (f *PersonForm) SetImage(fh *multipart.FileHeader) { f.Img = fh }
func (f *PersonForm) image() *multipart.FileHeader      { return f.Img }

func (f *PersonForm) clean() {
	f.Username = core.CleanString(f.Username, true /* lower */)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.FirstName = core.CleanString(f.FirstName)
	f.LastName = core.CleanString(f.LastName)
	f.Phone = core.CleanString(f.Phone)
	f.Address = core.CleanString(f.Address)
	f.BloodType = core.CleanString(f.BloodType)
	f.Birthday = core.CleanString(f.Birthday)
	f.Sex = core.CleanString(f.Sex, true /* lower */)
}

func (f *PersonForm) personMutations(table, role string, key interface{}, img string, now time.Time, extra ...Assignment) ([]Mutation, error) {
	birthday, err := time.ParseInLocation(dateLayout, f.Birthday, time.UTC)
	if err != nil {
		return nil, errors.Wrap(err, "parsing birthday")
	}
	set := []Assignment{
		{"username", f.Username},
		{"name", f.FirstName},
		{"surname", f.LastName},
		{"email", null.NewString(f.Email, f.Email != "")},
		{"phone", f.Phone},
		{"address", f.Address},
		{"blood_type", f.BloodType},
		{"sex", f.Sex},
		{"birthday", birthday},
	}
	set = append(set, extra...)
	if img != "" {
		set = append(set, Assignment{"img", null.StringFrom(img)})
	}

	account := []Assignment{{"username", f.Username}, {"updated_at", now}}
	if f.Password != "" {
		hash, err := user.HashPassword(f.Password)
		if err != nil {
			return nil, errors.Wrap(err, "hashing password")
		}
		account = append(account, Assignment{"password_hash", hash})
	}

	if f.Mode == ModeCreate {
		set = append(set, Assignment{"created_at", now})
		account = append(account,
			Assignment{"role", role},
			Assignment{"person_id", key},
			Assignment{"is_active", true},
			Assignment{"created_at", now},
		)
		return []Mutation{
			{Op: Insert, Table: table, KeyColumn: KeyField, Key: key, Set: set},
			{Op: Insert, Table: AccountTable, KeyColumn: KeyField, Set: account},
		}, nil
	}
	return []Mutation{
		{Op: Update, Table: table, KeyColumn: KeyField, Key: key, Set: set},
		{Op: Update, Table: AccountTable, KeyColumn: "person_id", Key: key, Set: account, Optional: true},
	}, nil
}

// welcome is the mail sent to a new account.
func (f *PersonForm) welcome(role string) *core.EmailMessage {
	if f.Email == "" {
		return nil
	}
	name := JoinName(f.FirstName, f.LastName)
	return &core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: f.Email}},
		Subject:      "Your account is ready",
		TemplateName: "welcome",
		TemplateData: map[string]string{"Name": name, "Username": f.Username, "Role": role},
	}
}

type TeacherForm struct {
	PersonForm
}

func (f *TeacherForm) mutations(table string, key interface{}, img string, now time.Time) ([]Mutation, error) {
	return f.personMutations(table, user.RoleTeacher, key, img, now)
}

type ParentForm struct {
	PersonForm
}

func (f *ParentForm) mutations(table string, key interface{}, img string, now time.Time) ([]Mutation, error) {
	return f.personMutations(table, user.RoleParent, key, img, now)
}

type StudentForm struct {
	PersonForm
	ParentID string `json:"parentId" form:"parentId" label:"Parent" validate:"required"`
	ClassID  int    `json:"classId" form:"classId" label:"Class" validate:"required"`
}

func (f *StudentForm) clean() {
	f.PersonForm.clean()
	f.ParentID = core.CleanString(f.ParentID)
}

func (f *StudentForm) mutations(table string, key interface{}, img string, now time.Time) ([]Mutation, error) {
	return f.personMutations(table, user.RoleStudent, key, img, now,
		Assignment{"parent_id", f.ParentID},
		Assignment{"class_id", f.ClassID},
	)
}

type SubjectForm struct {
	formBase
	Name string `json:"name" form:"name" label:"Name" validate:"required,max=100"`
}

func (f *SubjectForm) clean() {
	f.Name = core.CleanString(f.Name)
}

func (f *SubjectForm) mutations(table string, key interface{}, _ string, _ time.Time) ([]Mutation, error) {
	return singleMutation(f.Mode, table, key, Assignment{"name", f.Name}), nil
}

type ClassForm struct {
	formBase
	Name         string `json:"name" form:"name" label:"Name" validate:"required,max=20"`
	Capacity     int    `json:"capacity" form:"capacity" label:"Capacity" validate:"gte=1"`
	Grade        int    `json:"grade" form:"grade" label:"Grade" validate:"gte=1,lte=12"`
	SupervisorID string `json:"supervisorId" form:"supervisorId" label:"Supervisor"`
}

func (f *ClassForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.SupervisorID = core.CleanString(f.SupervisorID)
}

func (f *ClassForm) mutations(table string, key interface{}, _ string, _ time.Time) ([]Mutation, error) {
	return singleMutation(f.Mode, table, key,
		Assignment{"name", f.Name},
		Assignment{"capacity", f.Capacity},
		Assignment{"grade", f.Grade},
		Assignment{"supervisor_id", null.NewString(f.SupervisorID, f.SupervisorID != "")},
	), nil
}

var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

type LessonForm struct {
	formBase
	Name      string `json:"name" form:"name" label:"Name" validate:"required"`
	Day       string `json:"day" form:"day" label:"Day" validate:"oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	StartTime string `json:"startTime" form:"startTime" label:"Start Time" validate:"required,datetime=2006-01-02T15:04"`
	EndTime   string `json:"endTime" form:"endTime" label:"End Time" validate:"required,datetime=2006-01-02T15:04"`
	SubjectID int    `json:"subjectId" form:"subjectId" label:"Subject" validate:"required"`
	ClassID   int    `json:"classId" form:"classId" label:"Class" validate:"required"`
	TeacherID string `json:"teacherId" form:"teacherId" label:"Teacher" validate:"required"`
}

func (f *LessonForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.Day = core.CleanString(f.Day)
	f.StartTime = core.CleanString(f.StartTime)
	f.EndTime = core.CleanString(f.EndTime)
	f.TeacherID = core.CleanString(f.TeacherID)
}

func (f *LessonForm) mutations(table string, key interface{}, _ string, _ time.Time) ([]Mutation, error) {
	start, end, err := parseSpan(f.StartTime, f.EndTime)
	if err != nil {
		return nil, err
	}
	return singleMutation(f.Mode, table, key,
		Assignment{"name", f.Name},
		Assignment{"day", f.Day},
		Assignment{"start_time", start},
		Assignment{"end_time", end},
		Assignment{"subject_id", f.SubjectID},
		Assignment{"class_id", f.ClassID},
		Assignment{"teacher_id", f.TeacherID},
	), nil
}

type ExamForm struct {
	formBase
	Title     string `json:"title" form:"title" label:"Title" validate:"required,max=100"`
	StartTime string `json:"startTime" form:"startTime" label:"Start Time" validate:"required,datetime=2006-01-02T15:04"`
	EndTime   string `json:"endTime" form:"endTime" label:"End Time" validate:"required,datetime=2006-01-02T15:04"`
	LessonID  int    `json:"lessonId" form:"lessonId" label:"Lesson" validate:"required"`
}

func (f *ExamForm) clean() {
	f.Title = core.CleanString(f.Title)
	f.StartTime = core.CleanString(f.StartTime)
	f.EndTime = core.CleanString(f.EndTime)
}

func (f *ExamForm) mutations(table string, key interface{}, _ string, _ time.Time) ([]Mutation, error) {
	start, end, err := parseSpan(f.StartTime, f.EndTime)
	if err != nil {
		return nil, err
	}
	return singleMutation(f.Mode, table, key,
		Assignment{"title", f.Title},
		Assignment{"start_time", start},
		Assignment{"end_time", end},
		Assignment{"lesson_id", f.LessonID},
	), nil
}

func singleMutation(mode Mode, table string, key interface{}, set ...Assignment) []Mutation {
	op := Update
	if mode == ModeCreate {
		op = Insert
	}
	return []Mutation{{Op: op, Table: table, KeyColumn: KeyField, Key: key, Set: set}}
}

func parseSpan(start, end string) (time.Time, time.Time, error) {
	s, err := time.ParseInLocation(dateTimeLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "parsing startTime")
	}
	e, err := time.ParseInLocation(dateTimeLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "parsing endTime")
	}
	return s, e, nil
}
