package school

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	examDateLayout = "1/2/2006" // en-US
)

// Person holds the columns shared by teachers, students and parents.
type Person struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Img       string    `json:"img"`
	BloodType string    `json:"bloodType"`
	Sex       string    `json:"sex"`
	Birthday  time.Time `json:"birthday"`
}

func (p Person) Key() string { return p.ID }

func (p Person) image() string { return p.Img }

func (p Person) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.Surname)
}

// info is the "Info" cell: name and email.
func (p Person) info() string {
	if p.Email == "" {
		return p.FullName()
	}
	return p.FullName() + " (" + p.Email + ")"
}

func (p Person) FormData() map[string]string {
	data := map[string]string{
		"username":  p.Username,
		"email":     p.Email,
		"firstName": p.Name,
		"lastName":  p.Surname,
		"phone":     p.Phone,
		"address":   p.Address,
		"bloodType": p.BloodType,
		"sex":       p.Sex,
	}
	if !p.Birthday.IsZero() {
		data["birthday"] = p.Birthday.Format(dateLayout)
	}
	return data
}

type Teacher struct {
	Person
	Subjects []string `json:"subjects"`
	Classes  []string `json:"classes"`
}

func (t Teacher) Cells() []string {
	return []string{t.info(), t.ID, strings.Join(t.Subjects, ", "), strings.Join(t.Classes, ", "), t.Phone, t.Address}
}

type Student struct {
	Person
	ParentID  string `json:"parentId"`
	ClassID   int    `json:"classId"`
	ClassName string `json:"className"`
	Grade     int    `json:"grade"`
}

func (s Student) Cells() []string {
	return []string{s.info(), s.ID, strconv.Itoa(s.Grade), s.ClassName, s.Phone, s.Address}
}

func (s Student) FormData() map[string]string {
	data := s.Person.FormData()
	data["parentId"] = s.ParentID
	data["classId"] = strconv.Itoa(s.ClassID)
	return data
}

type Parent struct {
	Person
	Students []string `json:"students"`
}

func (p Parent) Cells() []string {
	return []string{p.info(), strings.Join(p.Students, ", "), p.Phone, p.Address}
}

type Subject struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Teachers []string `json:"teachers"`
}

func (s Subject) Key() string { return strconv.Itoa(s.ID) }

func (s Subject) Cells() []string {
	return []string{s.Name, strings.Join(s.Teachers, ", ")}
}

func (s Subject) FormData() map[string]string {
	return map[string]string{"name": s.Name}
}

type Class struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	Grade          int    `json:"grade"`
	SupervisorID   string `json:"supervisorId"`
	SupervisorName string `json:"supervisorName"`
}

func (c Class) Key() string { return strconv.Itoa(c.ID) }

func (c Class) Cells() []string {
	return []string{c.Name, strconv.Itoa(c.Capacity), strconv.Itoa(c.Grade), c.SupervisorName}
}

func (c Class) FormData() map[string]string {
	return map[string]string{
		"name":         c.Name,
		"capacity":     strconv.Itoa(c.Capacity),
		"grade":        strconv.Itoa(c.Grade),
		"supervisorId": c.SupervisorID,
	}
}

type Lesson struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Day         string    `json:"day"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	SubjectID   int       `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	ClassID     int       `json:"classId"`
	ClassName   string    `json:"className"`
	TeacherID   string    `json:"teacherId"`
	TeacherName string    `json:"teacherName"`
}

func (l Lesson) Key() string { return strconv.Itoa(l.ID) }

func (l Lesson) Cells() []string {
	return []string{l.SubjectName, l.ClassName, l.TeacherName}
}

func (l Lesson) FormData() map[string]string {
	return map[string]string{
		"name":      l.Name,
		"day":       l.Day,
		"startTime": l.StartTime.UTC().Format(dateTimeLayout),
		"endTime":   l.EndTime.UTC().Format(dateTimeLayout),
		"subjectId": strconv.Itoa(l.SubjectID),
		"classId":   strconv.Itoa(l.ClassID),
		"teacherId": l.TeacherID,
	}
}

type Exam struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	LessonID    int       `json:"lessonId"`
	SubjectName string    `json:"subjectName"`
	ClassID     int       `json:"classId"`
	ClassName   string    `json:"className"`
	TeacherID   string    `json:"teacherId"`
	TeacherName string    `json:"teacherName"`
}

func (e Exam) Key() string { return strconv.Itoa(e.ID) }

func (e Exam) Cells() []string {
	return []string{e.SubjectName, e.ClassName, e.TeacherName, e.StartTime.UTC().Format(examDateLayout)}
}

func (e Exam) FormData() map[string]string {
	return map[string]string{
		"title":     e.Title,
		"startTime": e.StartTime.UTC().Format(dateTimeLayout),
		"endTime":   e.EndTime.UTC().Format(dateTimeLayout),
		"lessonId":  strconv.Itoa(e.LessonID),
	}
}

// JoinName renders "name surname" for joined people.
func JoinName(name, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}
