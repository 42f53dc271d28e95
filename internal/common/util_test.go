package common

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 16
	buf := GenerateRandByteArray(n)
	require.Len(t, buf, n)
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)
	if bytes.Equal(a, b) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("hunter2")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 7), buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- errors ----------

func TestValidationError_IsAndAs(t *testing.T) {
	err := NewValidationError([]Violation{
		{Field: "min_pace", Message: "must be less than or equal to max_pace"},
		{Field: "email", Message: "is required"},
	})
	require.Error(t, err)

	wrapped := fmt.Errorf("signup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorValidation))

	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Len(t, ve.Details, 2)
	assert.Contains(t, ve.Error(), "min_pace")
	assert.Contains(t, ve.Error(), "email")
}

func TestNewValidationError_EmptyIsNil(t *testing.T) {
	assert.NoError(t, NewValidationError(nil))
}

func TestWithReason(t *testing.T) {
	err := WithReason(ErrorUnauthorized, "incorrect password")
	assert.True(t, errors.Is(err, ErrorUnauthorized))
	assert.Equal(t, "incorrect password", err.Error())
}
