package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type takePayload struct {
	UserName     string `json:"user_name" validate:"required"`
	SerialNumber string `json:"serial_number,omitempty" validate:"required,max=8"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&takePayload{UserName: "alice", SerialNumber: "SN001"}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&takePayload{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"serial_number", "user_name"}, verr.FieldNames())
	assert.Equal(t, "This field is required", verr.Fields["user_name"])
	assert.Equal(t,
		"validation failed: serial_number: This field is required; user_name: This field is required",
		verr.Error())
}

func TestValidate_OtherTagsUseGenericMessage(t *testing.T) {
	v := New()

	err := v.Validate(&takePayload{UserName: "alice", SerialNumber: "SN-TOO-LONG"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"serial_number": "failed validation on 'max'"}, verr.Fields)
}
