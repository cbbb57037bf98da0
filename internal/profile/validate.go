package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the profile fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid profile: missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Validate normalises p and checks the required fields.
func Validate(p *Profile) error {
	if p == nil {
		return errors.New("profile is required")
	}

	p.Normalize()

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating profile: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.TrimPrefix(fe.Namespace(), "Profile."))
	}
	return &ValidationError{Fields: fields}
}
