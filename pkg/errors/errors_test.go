package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	cause := errors.New("missing sender_id")
	err := Wrap(cause, ErrMalformedMessage)

	require.NotNil(t, err)
	assert.Equal(t, "MALFORMED_MESSAGE", err.Code)
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, ErrMalformedMessage))
}

func TestIsMalformedMessage(t *testing.T) {
	err := Wrap(errors.New("no tenant"), ErrMalformedMessage)

	assert.True(t, IsMalformedMessage(err))
	assert.True(t, IsMalformedMessage(fmt.Errorf("handler: %w", err)))
	assert.False(t, IsMalformedMessage(errors.New("plain")))
	assert.False(t, IsMalformedMessage(ErrInternal))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrValidation.WithCause(errors.New("bad json"))))
	assert.True(t, IsValidation(ErrMalformedMessage))
	assert.False(t, IsValidation(ErrTimeout))
}

func TestRetryableClassification(t *testing.T) {
	assert.False(t, ErrMalformedMessage.IsRetryable())
	assert.True(t, ErrMalformedMessage.IsFatal())

	assert.True(t, ErrServiceUnavailable.IsRetryable())
	assert.False(t, ErrServiceUnavailable.IsFatal())

	forced := ErrInternal.AsFatal()
	assert.True(t, forced.IsFatal())
	assert.False(t, forced.IsRetryable())
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrMalformedMessage))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}

func TestToErrorResponse(t *testing.T) {
	response := ToErrorResponse(ErrMalformedMessage.WithDetail("message", "sender_id is required"))

	assert.Equal(t, "MALFORMED_MESSAGE", response["error_code"])
	details, ok := response["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sender_id is required", details["message"])

	plain := ToErrorResponse(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", plain["error_code"])
}

func TestRecoverPanic(t *testing.T) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = RecoverPanic(r)
			}
		}()
		panic("nil map write")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map write")
}
