package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SchemaVersion is stamped on every stored record.
const SchemaVersion = 1

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("tags", validateTags)
}

// Validator exposes the shared instance for request-level checks.
func Validator() *validator.Validate {
	return validate
}

const (
	MaxTags      = 10
	MinTagLength = 2
	MaxTagLength = 30
)

func validateTags(fl validator.FieldLevel) bool {
	tags, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	if len(tags) > MaxTags {
		return false
	}
	for _, tag := range tags {
		n := len([]rune(strings.TrimSpace(tag)))
		if n < MinTagLength || n > MaxTagLength {
			return false
		}
	}
	return true
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}
