package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

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
	// Waste type validation (matches waste_type enum)
	validate.RegisterValidation("waste_type", func(fl validator.FieldLevel) bool {
		wasteType := fl.Field().String()
		validTypes := []string{"plastico", "papel", "vidro", "metal", "organico", "eletronico"}
		for _, t := range validTypes {
			if wasteType == t {
				return true
			}
		}
		return false
	})

	// Penalty severity validation
	validate.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		severity := fl.Field().String()
		validSeverities := []string{"warning", "suspension", "ban"}
		for _, s := range validSeverities {
			if severity == s {
				return true
			}
		}
		return false
	})
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
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "latitude":
			errors[field] = "Invalid latitude"
		case "longitude":
			errors[field] = "Invalid longitude"
		case "waste_type":
			errors[field] = "Invalid waste type. Must be: plastico, papel, vidro, metal, organico or eletronico"
		case "severity":
			errors[field] = "Invalid severity. Must be: warning, suspension or ban"
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
