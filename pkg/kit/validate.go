package kit

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
}

type FieldProblem struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "validation failed"
	}
	return e.Problems[0].Message
}

// Missing lists the fields that failed a "required" rule.
func (e *ValidationError) Missing() []string {
	var out []string
	for _, p := range e.Problems {
		if p.Rule == "required" {
			out = append(out, p.Field)
		}
	}
	return out
}

// Validate checks v against its `validate` tags. Field names in the result
// are the JSON names.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{Problems: make([]FieldProblem, 0, len(verrs))}
	for _, fe := range verrs {
		ve.Problems = append(ve.Problems, FieldProblem{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fe.Translate(translator),
		})
	}
	return ve
}
