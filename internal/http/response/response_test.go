package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]int{"id": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestErrorWithCode(t *testing.T) {
	resp := ErrorWithCode("group is read-only", "GROUP_READ_ONLY")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "group is read-only", resp.Error)
	assert.Equal(t, "GROUP_READ_ONLY", resp.Code)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Username string `validate:"required,alphanum"`
	}

	err := validator.New().Struct(req{Email: "not-an-email", Username: ""})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Email")
	assert.Contains(t, resp.Error, "Username")
}
