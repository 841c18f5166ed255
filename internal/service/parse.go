package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseDate parses a YYYY-MM-DD value, naming the field on failure.
func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("invalid %s: expected YYYY-MM-DD", field))
	}
	return t, nil
}

// parseClock validates an HH:MM value, naming the field on failure.
func parseClock(value, field string) (string, error) {
	if _, err := time.Parse(timeLayout, value); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("invalid %s: expected HH:MM", field))
	}
	return value, nil
}

// validationError maps validator failures to a 400 citing the first
// offending field.
func validationError(err error, fallback string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing required field: %s", fe.Field()))
		case "email":
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid email: %s", fe.Field()))
		case "phone":
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s: phone numbers need at least 7 digits", fe.Field()))
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid field: %s", fe.Field()))
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalLower(value string) *string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
