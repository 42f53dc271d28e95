package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.Empty(t, Email("runner@example.com"))
	assert.NotEmpty(t, Email(""))
	assert.NotEmpty(t, Email("no-at-sign"))
	assert.NotEmpty(t, Email("two@@example.com"))
	assert.NotEmpty(t, Email("spaces in@example.com"))
	assert.NotEmpty(t, Email(strings.Repeat("a", 95)+"@x.com"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "runner@example.com", NormalizeEmail("  Runner@Example.COM "))
}

func TestName(t *testing.T) {
	assert.Empty(t, Name("first_name", "Ann"))
	assert.NotEmpty(t, Name("first_name", "   "))
	assert.NotEmpty(t, Name("last_name", strings.Repeat("x", 51)))
}

func TestMiddleInitial(t *testing.T) {
	assert.Empty(t, MiddleInitial(""))
	assert.Empty(t, MiddleInitial("Q"))
	assert.NotEmpty(t, MiddleInitial("QR"))
	assert.NotEmpty(t, MiddleInitial("7"))
	assert.NotEmpty(t, MiddleInitial("é"))
}

func TestPassword(t *testing.T) {
	assert.Empty(t, Password("password", "secret"))
	assert.NotEmpty(t, Password("password", "12345"))
}

func TestRequiredBool(t *testing.T) {
	v, violations := RequiredBool("is_leader", json.RawMessage("true"))
	assert.Empty(t, violations)
	assert.True(t, v)

	_, violations = RequiredBool("is_leader", nil)
	assert.Equal(t, "is required", violations[0].Message)

	_, violations = RequiredBool("is_leader", json.RawMessage(`"yes"`))
	assert.Equal(t, "must be a boolean", violations[0].Message)
}

func TestRequiredBound(t *testing.T) {
	v, violations := RequiredBound("min_pace", json.RawMessage("480"))
	assert.Empty(t, violations)
	assert.Equal(t, int64(480), v)

	_, violations = RequiredBound("min_pace", json.RawMessage("null"))
	assert.Equal(t, "is required", violations[0].Message)

	_, violations = RequiredBound("min_pace", json.RawMessage("-4"))
	assert.Equal(t, "must be a non-negative integer", violations[0].Message)
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{`"42"`, 42, true},
		{`"007"`, 7, true},
		{"5.0", 5, true},
		{"5.000", 5, true},
		{"0.0", 0, true},
		{"9223372036854775807", 9223372036854775807, true},
		{`" 7 "`, 0, false},
		{`"+5"`, 0, false},
		{`"-0"`, 0, false},
		{`"5.0"`, 0, false},
		{`""`, 0, false},
		{"-1", 0, false},
		{"-0", 0, false},
		{"4.5", 0, false},
		{"2.50", 0, false},
		{"1e3", 0, false},
		{"05", 0, false},
		{"9223372036854775808", 0, false},
		{`"9223372036854775808"`, 0, false},
		{`"abc"`, 0, false},
		{"true", 0, false},
		{"[]", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseBound(json.RawMessage(tt.in))
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
