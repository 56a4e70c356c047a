package class

import (
	"github.com/go-playground/validator/v10"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/timeutil"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "invalid weekday"

	clockTimeTag  = "clocktime"
	clockTimeText = "time must be formatted as HH:MM"
)

// register validators
func init() {
	_ = core.Validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(weekdayTag, weekdayText)

	_ = core.Validate.RegisterValidation(clockTimeTag, clockTimeValidation)
	core.RegisterCustomTranslation(clockTimeTag, clockTimeText)
}

// Custom Validators

// weekdayValidation only allows the lowercase weekday identifiers (monday..sunday).
func weekdayValidation(fl validator.FieldLevel) bool {
	if day, ok := fl.Field().Interface().(string); ok {
		return timeutil.IsWeekday(day)
	}
	return false
}

func clockTimeValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		_, err := timeutil.ParseClockTime(str)
		return err == nil
	}
	return false
}
