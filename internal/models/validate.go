package models

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var httpURLPattern = regexp.MustCompile(
	`^https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_+.~#?&/=]*)$`,
)

// IsHTTPURL reports whether s is an absolute http(s) link acceptable as an avatar or card image.
func IsHTTPURL(s string) bool {
	return httpURLPattern.MatchString(s)
}

func validateHTTPURL(fieldLevel validator.FieldLevel) bool {
	return IsHTTPURL(fieldLevel.Field().String())
}

// validateMaxBytes limits the UTF-8 length of a string. bcrypt counts bytes,
// while the built-in max counts runes.
func validateMaxBytes(fieldLevel validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fieldLevel.Param())
	if err != nil {
		return false
	}

	return len(fieldLevel.Field().String()) <= limit
}

// NewValidator returns a validator that knows the `httpurl` and `maxbytes` rules and reports
// fields by their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = validate.RegisterValidation("httpurl", validateHTTPURL)
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)

	return validate
}
