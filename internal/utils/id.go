package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// TokenSize is the number of random bytes behind a token from NewToken.
const TokenSize = 6

// NewToken returns a short, best-effort unique identifier.
// Uniqueness is not checked against anything; callers accept the collision risk.
func NewToken() string {
	buf := make([]byte, TokenSize)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
