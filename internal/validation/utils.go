package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their JSON (or path/query) name so field
// errors match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "param", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// ParseUUID parses an id that already passed the "uuid" tag.
func ParseUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}
