package contact

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Message{Name: "Sam", Email: "sam@example.com", Message: "Hello"}
	tests := []struct {
		name   string
		msg    Message
		fields []string
	}{
		{"valid", valid, nil},
		{"empty", Message{}, []string{"name", "email", "message"}},
		{"bad email", Message{Name: "Sam", Email: "nope", Message: "x"}, []string{"email"}},
		{"display name email", Message{Name: "Sam", Email: "Sam <sam@example.com>", Message: "x"}, []string{"email"}},
		{"long message", Message{Name: "Sam", Email: "sam@example.com", Message: strings.Repeat("a", maxMessageLen+1)}, []string{"message"}},
		{"long name", Message{Name: strings.Repeat("n", maxNameLen+1), Email: "sam@example.com", Message: "x"}, []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Len(t, verrs, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, verrs, f)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Message{Name: " Sam ", Email: "\tsam@example.com\n", Message: "  hi  "}.Normalize()
	assert.Equal(t, Message{Name: "Sam", Email: "sam@example.com", Message: "hi"}, got)
}

func TestValidationErrorsMessageIsSorted(t *testing.T) {
	err := ValidationErrors{"name": "a", "email": "b"}
	assert.Equal(t, "contact: invalid submission: email: b; name: a", err.Error())
}
