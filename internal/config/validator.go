package config

import (
	"FastGrapher/internal/api/project"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	v := validator.New()
	if err := project.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
