package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name: "test_pair",
	Source: `{
		"type": "object",
		"required": ["a", "b"],
		"properties": {
			"a": {"type": "string", "minLength": 1},
			"b": {"type": "object", "additionalProperties": {"type": "string"}}
		}
	}`,
}

type pair struct {
	A string            `json:"a"`
	B map[string]string `json:"b"`
}

func TestDecodeValid(t *testing.T) {
	var got pair
	require.NoError(t, Decode(strings.NewReader(`{"a":"x","b":{"q1":"o1"}}`), testSchema, &got))
	assert.Equal(t, "x", got.A)
	assert.Equal(t, map[string]string{"q1": "o1"}, got.B)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"not json":      `{`,
		"missing field": `{"a":"x"}`,
		"wrong type":    `{"a":"x","b":{"q1":1}}`,
		"blank string":  `{"a":"","b":{}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var got pair
			err := Decode(strings.NewReader(body), testSchema, &got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBody))
		})
	}
}

func TestDecodeTooLarge(t *testing.T) {
	body := `{"a":"` + strings.Repeat("x", maxBodyBytes) + `","b":{}}`
	var got pair
	err := Decode(strings.NewReader(body), testSchema, &got)
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestMustCompilePanicsOnBrokenSchema(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(Schema{Name: "broken", Source: `{"type": 12}`})
	})
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(loginForm{Email: "a@b.co", Password: "x"}))

	err := Struct(loginForm{Email: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBody)
	assert.Contains(t, err.Error(), "email: email")
	assert.Contains(t, err.Error(), "password: required")
}
