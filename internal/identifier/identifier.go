// Package identifier generates the opaque names shared by all derivatives of one upload.
package identifier

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Length is the number of hex characters in an identifier.
const Length = 24

// New returns a fresh 24-character lowercase hex identifier.
//
// It is not derived from the image, so identical uploads get different names.
// No collision check is made against storage. New panics if the system
// entropy source fails.
func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		panic(fmt.Sprintf("identifier: uuid entropy source failed: %v", err))
	}

	buf := make([]byte, 0, 32)
	buf = append(buf, id[:]...)

	extra := make([]byte, 16)
	if _, err := rand.Read(extra); err != nil {
		panic(fmt.Sprintf("identifier: entropy source failed: %v", err))
	}
	buf = append(buf, extra...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])[:Length]
}

// Valid reports whether s has the shape of an identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
