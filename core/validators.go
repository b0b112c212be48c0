package core

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "{0} may only contain alphanumeric characters and underscores!"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	// form messages
	messages = map[string]string{
		"required": "{0} is required!",
		"oneof":    "{0} is required!",
		"min":      "{0} must be at least {1} characters long!",
		"max":      "{0} must be at most {1} characters long!",
		"gte":      "{0} must be at least {1}!",
		"lte":      "{0} must be at most {1}!",
		"email":    "Invalid email address!",
		"datetime": "{0} must be a valid date!",
	}

	labelsMu sync.RWMutex
	labels   = make(map[string]string) // {json name: label}
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	for tag, text := range messages {
		RegisterCustomTranslation(validate, translator, tag, text, true)
	}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// {0} is replaced with the field label, {1} with the tag param (or its label).
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			param := fe.Param()
			if lbl, ok := lookupLabel(param); ok {
				param = lbl
			}
			s, _ := t.T(tag, Label(fe.Field()), param)
			return s
		},
	)
}

// RegisterLabels records the `label` struct tags of the given structs (embedded structs included),
// keyed by the field's JSON name.
func RegisterLabels(structs ...interface{}) {
	labelsMu.Lock()
	defer labelsMu.Unlock()
	for _, s := range structs {
		registerLabels(reflect.TypeOf(s))
	}
}

func registerLabels(typ reflect.Type) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < typ.NumField(); i++ {
		fld := typ.Field(i)
		if fld.Anonymous {
			registerLabels(fld.Type)
			continue
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if lbl := fld.Tag.Get("label"); name != "" && name != "-" && lbl != "" {
			labels[name] = lbl
		}
	}
}

func lookupLabel(field string) (string, bool) {
	labelsMu.RLock()
	defer labelsMu.RUnlock()
	lbl, ok := labels[field]
	return lbl, ok
}

// Label returns the human-readable label of a field, defaulting to the capitalized field name.
func Label(field string) string {
	if lbl, ok := lookupLabel(field); ok {
		return lbl
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// TranslateErrors turns validator errors into a *ValidationError carrying translated field messages.
// Any other error is returned as is.
func TranslateErrors(err error, translator ut.Translator, extra ...FieldError) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err == nil && len(extra) > 0 {
			return NewValidationError(nil, extra...)
		}
		return err
	}
	flds := make([]FieldError, 0, len(verrs)+len(extra))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return NewValidationError(nil, append(flds, extra...)...)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}
