package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"sosapp/internal/models"
	"sosapp/internal/utils"
)

var validate *validator.Validate

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

func init() {
	validate = validator.New()

	// Register custom validation functions
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("permission_kind", validatePermissionKind)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the field map of an error response.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Message: err.Error()}}
	}

	for _, err := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
			Message: getErrorMessage(err),
		})
	}

	return validationErrors
}

// ValidatePhone checks a single recipient number.
func ValidatePhone(phone string) error {
	if err := validate.Var(phone, "required,phone_number"); err != nil {
		return fmt.Errorf("invalid phone number %q", phone)
	}
	return nil
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	case "phone_number":
		return "Invalid phone number format"
	case "permission_kind":
		return "Unknown permission kind"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}

	return phoneRegex.MatchString(utils.NormalizePhone(phone))
}

func validatePermissionKind(fl validator.FieldLevel) bool {
	return models.PermissionKind(fl.Field().String()).IsValid()
}
