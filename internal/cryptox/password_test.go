package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, pw := range []string{"secret", "correct horse battery staple", "пароль123", ""} {
		h, err := HashPassword(pw)
		require.NoError(t, err)
		assert.True(t, VerifyPassword(h, pw), "password %q must verify", pw)
		assert.False(t, VerifyPassword(h, pw+"x"), "password %q+x must not verify", pw)
	}
}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=3,p=2$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashPassword_RandomSalt(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	// одинаковый пароль, разные соли
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "same-password"))
	assert.True(t, VerifyPassword(h2, "same-password"))
}

func TestVerifyPassword_UsesEncodedParameters(t *testing.T) {
	h, err := HashPassword("secret")
	require.NoError(t, err)

	// tampering with the cost must change the derived key
	tampered := strings.Replace(h, "t=3", "t=1", 1)
	assert.False(t, VerifyPassword(tampered, "secret"))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"bcrypt", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{"wrong version", "$argon2id$v=16$m=65536,t=3,p=2$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=2$c2FsdA$a2V5"},
		{"zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$a2V5"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=2$!!!$a2V5"},
		{"empty key", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$"},
		{"too few parts", "$argon2id$v=19$c2FsdA$a2V5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyPassword(tt.encoded, "secret"))
		})
	}
}
