package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/rowad-platform/merit-api/internal/models"
)

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags, safe to ignore here.
	_ = v.RegisterValidation("behavior_type", func(fl validator.FieldLevel) bool {
		return models.BehaviorType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	return v
}
