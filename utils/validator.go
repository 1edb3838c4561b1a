package utils

import "github.com/go-playground/validator/v10"

type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var validate = validator.New()

// ValidateStruct corre las reglas declaradas en los tags `validate` de un
// DTO y devuelve las fallas campo por campo.
func ValidateStruct(data interface{}) []FieldError {
	var fails []FieldError
	if err := validate.Struct(data); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			fails = append(fails, FieldError{
				Field: fe.StructNamespace(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
	}
	return fails
}
