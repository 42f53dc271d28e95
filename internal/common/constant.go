package common

import "time"

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "CMIYC"

// SessionTokenLifetime is the fixed absolute lifetime of a session token.
const SessionTokenLifetime = 7 * 24 * time.Hour

// MinPasswordLength is the shortest accepted plaintext password.
const MinPasswordLength = 6

// MaxEmailLength is the longest accepted email address.
const MaxEmailLength = 100
