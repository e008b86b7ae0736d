package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTTPURL(t *testing.T) {
	type tTestCase struct {
		name string
		link string
		want bool
	}
	testCases := []tTestCase{
		{name: "https", link: "https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png", want: true},
		{name: "http_with_www", link: "http://www.example.com/a?b=c", want: true},
		{name: "no_scheme", link: "example.com/pic.png", want: false},
		{name: "ftp", link: "ftp://example.com/pic.png", want: false},
		{name: "spaces", link: "https://exa mple.com", want: false},
		{name: "empty", link: "", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, IsHTTPURL(testCase.link))
		})
	}
}

func TestNewValidationErrorUsesJSONFieldNames(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(&SignUpRequest{Email: "not-an-email", Password: "secret1"})
	require.Error(t, err)

	validationErr := NewValidationError(err)
	assert.Equal(t, "email: Введите верный email", validationErr.Message)
}

func TestNewValidationErrorJoinsAllFields(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(&CreateCardRequest{Name: "a", Link: "nope"})
	require.Error(t, err)

	validationErr := NewValidationError(err)
	assert.Contains(t, validationErr.Message, "name: Минимальная длина поля - 2")
	assert.Contains(t, validationErr.Message, "link: Неверный URL")
}

func TestNewValidationErrorForForeignError(t *testing.T) {
	validationErr := NewValidationError(errors.New("boom"))
	assert.Equal(t, "Переданы некорректные данные", validationErr.Message)
}

func TestValidSignUpRequestPasses(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(&SignUpRequest{Email: "a@b.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestPasswordLengthIsCountedInBytes(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(&SignUpRequest{Email: "a@b.com", Password: strings.Repeat("p", 72)})
	assert.NoError(t, err)

	err = validate.Struct(&SignUpRequest{Email: "a@b.com", Password: strings.Repeat("п", 36)})
	assert.NoError(t, err, "36 Cyrillic letters are exactly 72 bytes")

	err = validate.Struct(&SignUpRequest{Email: "a@b.com", Password: strings.Repeat("п", 40)})
	require.Error(t, err)
	assert.Equal(t, "password: Максимальная длина поля в байтах - 72", NewValidationError(err).Message)
}
