package recruiting

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ValidationError lists every rule an input violates.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

// fieldLabels maps struct field names to the wording used in messages.
var fieldLabels = map[string]string{
	"Title":            "Job title",
	"Seniority":        "Seniority",
	"Team":             "Team name",
	"Location":         "Location",
	"RemotePolicy":     "Remote policy",
	"MustHaveSkills":   "Must-have skills",
	"NiceToHaveSkills": "Nice-to-have skills",
	"Responsibilities": "Responsibilities",
	"Requirements":     "Requirements",
	"Benefits":         "Benefits",
	"RoleTitle":        "Role title",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// Validate checks a posting input.
func (in PostingInput) Validate() error {
	return validateStruct(in)
}

// Validate checks a kit input.
func (in KitInput) Validate() error {
	return validateStruct(in)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError(err.Error())
	}

	details := make([]string, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fieldMessage(fe)
		if !seen[msg] {
			seen[msg] = true
			details = append(details, msg)
		}
	}
	return NewValidationError(details...)
}

// fieldMessage renders one failed rule. Element-level failures (from dive)
// report against the enclosing list.
func fieldMessage(fe validator.FieldError) string {
	name := fe.StructField()
	element := false
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
		element = true
	}
	label, ok := fieldLabels[name]
	if !ok {
		label = name
	}

	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "max":
		if element {
			return fmt.Sprintf("%s entries must be at most %s characters", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
