package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ClassifyRequest is the body of POST /classify/.
type ClassifyRequest struct {
	Subjects          []string          `json:"subjects" binding:"required,dive,required"`
	Grades            map[string]string `json:"grades" binding:"required,dive,required"`
	FavoriteSubjects  []string          `json:"favorite_subjects" binding:"required,dive,required"`
	Hobbies           []string          `json:"hobbies" binding:"required,dive,required"`
	Interests         []string          `json:"interests" binding:"required,dive,required"`
	PersonalityType   string            `json:"personality_type" binding:"max=4"`
	PersonalityScores map[string]any    `json:"personality_scores"`
}

// NewProfile converts the request into store input.
func (r ClassifyRequest) NewProfile() NewProfile {
	return NewProfile{
		Subjects:          r.Subjects,
		Grades:            r.Grades,
		FavoriteSubjects:  r.FavoriteSubjects,
		Hobbies:           r.Hobbies,
		Interests:         r.Interests,
		PersonalityType:   r.PersonalityType,
		PersonalityScores: r.PersonalityScores,
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator errors report json field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

const nonFieldErrors = "non_field_errors"

// validationDetails maps a binding error onto {field: [messages]}.
func validationDetails(err error) map[string][]string {
	details := map[string][]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fe.Field()
			element := false
			if i := strings.Index(field, "["); i >= 0 {
				field, element = field[:i], true
			}
			details[field] = append(details[field], fieldMessage(fe, element))
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if i := strings.Index(field, "."); i >= 0 {
			field = field[:i]
		}
		if field == "" {
			field = nonFieldErrors
		}
		details[field] = append(details[field], fmt.Sprintf("Expected %s but got %s.", describeType(typeErr.Type), typeErr.Value))
		return details
	}

	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		details[nonFieldErrors] = []string{fmt.Sprintf("JSON parse error at offset %d.", syntaxErr.Offset)}
	case errors.Is(err, io.EOF):
		details[nonFieldErrors] = []string{"Request body is empty."}
	default:
		details[nonFieldErrors] = []string{err.Error()}
	}
	return details
}

// fieldMessage renders one validator failure; element marks a failure on a list item or map value.
func fieldMessage(fe validator.FieldError, element bool) string {
	switch fe.Tag() {
	case "required":
		if element {
			return "This field may not be blank."
		}
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "a value"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return t.String()
	}
}
