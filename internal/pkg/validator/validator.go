package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Wall-clock time in HH:MM, 24h
	validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return isClock(fl.Field().String())
	})

	// English weekday name, the canonical availability key
	validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().String()
		validDays := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
		for _, d := range validDays {
			if day == d {
				return true
			}
		}
		return false
	})

	// Block workflow mode
	validate.RegisterValidation("block_mode", func(fl validator.FieldLevel) bool {
		mode := fl.Field().String()
		validModes := []string{"slot", "day", "range"}
		for _, m := range validModes {
			if mode == m {
				return true
			}
		}
		return false
	})
}

func isClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh < 24 && mm < 60
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too small (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too large (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "uuid":
			errors[field] = "Invalid UUID format"
		case "clock":
			errors[field] = "Invalid time, expected HH:MM"
		case "weekday":
			errors[field] = "Invalid weekday, expected an English day name"
		case "block_mode":
			errors[field] = "Invalid mode. Must be: slot, day, or range"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
