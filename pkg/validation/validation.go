package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phoneCharset = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// New returns a validator with the application's custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", validPhone)
	return v
}

// ValidPhone reports whether the value looks like a phone number: digits,
// spaces, dashes, plus and parentheses only, with at least 7 digits.
func ValidPhone(value string) bool {
	if value == "" || !phoneCharset.MatchString(value) {
		return false
	}
	digits := nonDigit.ReplaceAllString(value, "")
	return len(digits) >= 7
}

func validPhone(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}
