package validate

import "github.com/go-playground/validator/v10"

var instance = validator.New()

// Struct validates a struct using its `validate` tags.
func Struct(s any) error {
	return instance.Struct(s)
}
