package project

import (
	"FastGrapher/internal/entity"

	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the project_type tag to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("project_type", func(fl validator.FieldLevel) bool {
		return entity.ProjectType(fl.Field().String()).Valid()
	})
}
