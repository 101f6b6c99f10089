package middleware

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// SanitizeString removes control characters (keeping newlines and tabs) and
// trims surrounding whitespace.
func SanitizeString(input string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(input, ""))
}

// ValidateStruct runs validator tags against a bound request payload.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
