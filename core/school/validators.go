package school

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schooldash/core"
)

var (
	afterTag  = "after"
	afterText = "{0} must be after {1}!"
)

// InitValidators registers the form validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterLabels(
		TeacherForm{}, StudentForm{}, ParentForm{}, SubjectForm{}, ClassForm{}, LessonForm{}, ExamForm{},
	)

	validate.RegisterStructValidation(personStructValidation, PersonForm{})
	validate.RegisterStructValidation(spanStructValidation, LessonForm{}, ExamForm{})
	core.RegisterCustomTranslation(validate, translator, afterTag, afterText)
}

// personStructValidation requires a password and an image on create.
func personStructValidation(sl validator.StructLevel) {
	f := sl.Current().Interface().(PersonForm)
	if f.Mode != ModeCreate {
		return
	}
	if f.Password == "" {
		sl.ReportError(f.Password, "password", "Password", "min", "8")
	}
	if f.Img == nil {
		sl.ReportError(f.Img, "img", "Img", "required", "")
	}
}

func spanStructValidation(sl validator.StructLevel) {
	var start, end string
	switch f := sl.Current().Interface().(type) {
	case LessonForm:
		start, end = f.StartTime, f.EndTime
	case ExamForm:
		start, end = f.StartTime, f.EndTime
	default:
		return
	}

	s, err := time.Parse(dateTimeLayout, start)
	if err != nil {
		return // reported by the field tags
	}
	e, err := time.Parse(dateTimeLayout, end)
	if err != nil {
		return
	}
	if !e.After(s) {
		sl.ReportError(end, "endTime", "EndTime", afterTag, "startTime")
	}
}
