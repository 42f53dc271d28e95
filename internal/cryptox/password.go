// Package cryptox implements the credential store primitives: a one-way,
// randomly salted argon2id password hash and its verification.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"golang.org/x/crypto/argon2"
)

// Fixed argon2id parameters. Changing them does not invalidate stored
// hashes because every encoding carries the parameters it was made with.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

var b64 = base64.RawStdEncoding

// HashPassword returns the PHC-style encoding
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
//
// of plaintext under a fresh random salt.
func HashPassword(plaintext string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	key := argon2.IDKey(pw, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether plaintext matches encoded. A malformed
// encoding yields false.
func VerifyPassword(encoded, plaintext string) bool {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	candidate := argon2.IDKey(pw, salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

type params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeHash(encoded string) (params, []byte, []byte, error) {
	var p params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, err
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, err
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return p, nil, nil, fmt.Errorf("invalid argon2 parameters")
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, err
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, err
	}
	if len(salt) == 0 || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("empty salt or key")
	}

	return p, salt, key, nil
}

// Argon2id is the production PasswordHasher.
type Argon2id struct{}

func (Argon2id) Hash(plaintext string) (string, error) { return HashPassword(plaintext) }

func (Argon2id) Verify(encoded, plaintext string) bool { return VerifyPassword(encoded, plaintext) }
