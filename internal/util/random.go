// Package util holds small helpers shared across LetterCraft components.
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomID returns "{prefix}{hex}" with hexLength random hex digits
// drawn from crypto/rand.
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex returns length random lowercase hex digits.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	buf := make([]byte, (length+1)/2)
	// crypto/rand.Read never returns an error; it aborts the program if the
	// system source fails.
	rand.Read(buf)
	return hex.EncodeToString(buf)[:length]
}

// GenerateSessionID generates an editor session ID with "s_" prefix. The id
// is the only credential for a session, so it carries 128 random bits.
func GenerateSessionID() string {
	return GenerateRandomID("s_", 32)
}
