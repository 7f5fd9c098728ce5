package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "something went wrong"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
}

func TestFieldError(t *testing.T) {
	resp := FieldError("email", "email is already taken")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "email is already taken", resp.Error)
	assert.Equal(t, map[string]string{"email": "email is already taken"}, resp.Errors)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Username string `validate:"required,alphanum"`
		Email    string `validate:"email"`
	}

	v := validator.New()
	ts := TestStruct{
		Username: "!!!",
		Email:    "not-an-email",
	}

	err := v.Struct(ts)
	assert.Error(t, err)

	validationErrors := err.(validator.ValidationErrors)
	resp := ValidationError(validationErrors)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Errors["Username"], "can contain only numbers and letters")
	assert.Contains(t, resp.Errors["Email"], "must be a valid email address")
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Email string `validate:"required"`
	}

	v := validator.New()
	ts := TestStruct{}

	err := v.Struct(ts)
	assert.Error(t, err)

	validationErrors := err.(validator.ValidationErrors)
	resp := ValidationError(validationErrors)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Errors["Email"], "is a required field")
}

func TestValidationErrorEqfield(t *testing.T) {
	type TestStruct struct {
		Password             string `validate:"required"`
		PasswordConfirmation string `validate:"eqfield=Password"`
	}

	v := validator.New()
	ts := TestStruct{
		Password:             "password123",
		PasswordConfirmation: "different123",
	}

	err := v.Struct(ts)
	assert.Error(t, err)

	validationErrors := err.(validator.ValidationErrors)
	resp := ValidationError(validationErrors)

	assert.Contains(t, resp.Errors["PasswordConfirmation"], "must match Password")
}
