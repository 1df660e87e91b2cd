package validators

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// IsIso8601 accepts RFC3339 timestamps.
func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

// IsHourMinute accepts a time of day in "HH:MM" form.
func IsHourMinute(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
