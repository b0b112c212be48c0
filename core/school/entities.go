package school

import (
	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/user"
)

const (
	authSection     = "Authentication Information"
	personalSection = "Personal Information"
)

var personFields = []FormField{
	{Name: "username", Label: "User name", Type: "text", Section: authSection},
	{Name: "email", Label: "Email", Type: "email", Section: authSection},
	{Name: "password", Label: "Password", Type: "password", Section: authSection},
	{Name: "firstName", Label: "First Name", Type: "text", Section: personalSection},
	{Name: "lastName", Label: "Last Name", Type: "text", Section: personalSection},
	{Name: "phone", Label: "Phone", Type: "text", Section: personalSection},
	{Name: "address", Label: "Address", Type: "text", Section: personalSection},
	{Name: "bloodType", Label: "Blood Type", Type: "text", Section: personalSection},
	{Name: "birthday", Label: "Birthday", Type: "date", Section: personalSection},
	{Name: "sex", Label: "Sex", Type: "select", Section: personalSection, Options: []string{"male", "female"}},
	{Name: "img", Label: "Upload a photo", Type: "file", Section: personalSection},
}

var personSorts = map[string]string{
	"name":      "name",
	"surname":   "surname",
	"createdAt": "created_at",
}

var nameSearch = listing.FilterField{Key: listing.SearchParam, Fields: []string{"name"}, Op: listing.ContainsFold}

var entities = []*Entity{
	{
		Kind: Teachers, Name: "teacher", Title: "All Teachers", Table: "teacher", Role: user.RoleTeacher,
		KeyKind: listing.AsString,
		Filters: listing.FilterSpec{
			{Key: "classId", Fields: []string{"lessons.class_id"}, Coerce: listing.AsInt},
			nameSearch,
		},
		Sorts: listing.SortSpec{
			Fields:  personSorts,
			Default: []core.DBOrdering{{Field: "name", Ascending: true}},
			Key:     KeyField,
		},
		Columns:  []string{"Info", "Teacher ID", "Subjects", "Classes", "Phone", "Address"},
		Fields:   personFields,
		NewForm:  func() Form { return &TeacherForm{} },
		imgField: true,
	},
	{
		Kind: Students, Name: "student", Title: "All Students", Table: "student", Role: user.RoleStudent,
		KeyKind: listing.AsString,
		Filters: listing.FilterSpec{
			{Key: "teacherId", Fields: []string{"class.lessons.teacher_id"}},
			{Key: "classId", Fields: []string{"class_id"}, Coerce: listing.AsInt},
			nameSearch,
		},
		Sorts: listing.SortSpec{
			Fields:  personSorts,
			Default: []core.DBOrdering{{Field: "name", Ascending: true}},
			Key:     KeyField,
		},
		Columns: []string{"Info", "Student ID", "Grade", "Class", "Phone", "Address"},
		Fields: append(personFields[:len(personFields):len(personFields)],
			FormField{Name: "parentId", Label: "Parent", Type: "text", Section: personalSection},
			FormField{Name: "classId", Label: "Class", Type: "number", Section: personalSection},
		),
		NewForm:  func() Form { return &StudentForm{} },
		imgField: true,
	},
	{
		Kind: Parents, Name: "parent", Title: "All Parents", Table: "parent", Role: user.RoleParent,
		KeyKind: listing.AsString,
		Filters: listing.FilterSpec{nameSearch},
		Sorts: listing.SortSpec{
			Fields:  personSorts,
			Default: []core.DBOrdering{{Field: "name", Ascending: true}},
			Key:     KeyField,
		},
		Columns:  []string{"Info", "Student Names", "Phone", "Address"},
		Fields:   personFields,
		NewForm:  func() Form { return &ParentForm{} },
		imgField: true,
	},
	{
		Kind: Subjects, Name: "subject", Title: "All Subjects", Table: "subject",
		KeyKind: listing.AsInt,
		Filters: listing.FilterSpec{nameSearch},
		Sorts: listing.SortSpec{
			Fields:  map[string]string{"name": "name"},
			Default: []core.DBOrdering{{Field: "name", Ascending: true}},
			Key:     KeyField,
		},
		Columns: []string{"Subject Name", "Teachers"},
		Fields:  []FormField{{Name: "name", Label: "Name", Type: "text"}},
		NewForm: func() Form { return &SubjectForm{} },
	},
	{
		Kind: Classes, Name: "class", Title: "All Classes", Table: "class",
		KeyKind: listing.AsInt,
		Filters: listing.FilterSpec{
			{Key: "supervisorId", Fields: []string{"supervisor_id"}},
			nameSearch,
		},
		Sorts: listing.SortSpec{
			Fields:  map[string]string{"name": "name", "capacity": "capacity", "grade": "grade"},
			Default: []core.DBOrdering{{Field: "grade", Ascending: true}, {Field: "name", Ascending: true}},
			Key:     KeyField,
		},
		Columns: []string{"Class Name", "Capacity", "Grade", "Supervisor"},
		Fields: []FormField{
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "capacity", Label: "Capacity", Type: "number"},
			{Name: "grade", Label: "Grade", Type: "number"},
			{Name: "supervisorId", Label: "Supervisor", Type: "text"},
		},
		NewForm: func() Form { return &ClassForm{} },
	},
	{
		Kind: Lessons, Name: "lesson", Title: "All Lessons", Table: "lesson",
		KeyKind: listing.AsInt,
		Filters: listing.FilterSpec{
			{Key: "teacherId", Fields: []string{"teacher_id"}},
			{Key: "classId", Fields: []string{"class_id"}, Coerce: listing.AsInt},
			{Key: listing.SearchParam, Fields: []string{"subject.name", "teacher.name"}, Op: listing.ContainsFold},
		},
		Sorts: listing.SortSpec{
			Fields:  map[string]string{"name": "name", "day": "day", "startTime": "start_time"},
			Default: []core.DBOrdering{{Field: "start_time", Ascending: true}},
			Key:     KeyField,
		},
		Columns: []string{"Subject Name", "Class", "Teacher"},
		Fields: []FormField{
			{Name: "name", Label: "Name", Type: "text"},
			{Name: "day", Label: "Day", Type: "select", Options: Weekdays},
			{Name: "startTime", Label: "Start Time", Type: "datetime-local"},
			{Name: "endTime", Label: "End Time", Type: "datetime-local"},
			{Name: "subjectId", Label: "Subject", Type: "number"},
			{Name: "classId", Label: "Class", Type: "number"},
			{Name: "teacherId", Label: "Teacher", Type: "text"},
		},
		NewForm: func() Form { return &LessonForm{} },
	},
	{
		Kind: Exams, Name: "exam", Title: "All Exams", Table: "exam",
		KeyKind: listing.AsInt,
		Filters: listing.FilterSpec{
			{Key: "teacherId", Fields: []string{"lesson.teacher_id"}},
			{Key: "classId", Fields: []string{"lesson.class_id"}, Coerce: listing.AsInt},
			{Key: listing.SearchParam, Fields: []string{"lesson.subject.name"}, Op: listing.ContainsFold},
		},
		Sorts: listing.SortSpec{
			Fields:  map[string]string{"title": "title", "startTime": "start_time"},
			Default: []core.DBOrdering{{Field: "start_time", Ascending: true}},
			Key:     KeyField,
		},
		Columns: []string{"Subject Name", "Class", "Teacher", "Date"},
		Fields: []FormField{
			{Name: "title", Label: "Title", Type: "text"},
			{Name: "startTime", Label: "Start Time", Type: "datetime-local"},
			{Name: "endTime", Label: "End Time", Type: "datetime-local"},
			{Name: "lessonId", Label: "Lesson", Type: "number"},
		},
		NewForm: func() Form { return &ExamForm{} },
	},
}
