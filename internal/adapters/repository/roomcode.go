package repository

import (
	"math/rand/v2"
	"strings"

	"github.com/okian/playerhunt/internal/domain/normalize"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// GenerateRoomCode returns a random six-character code of upper-case letters
// and digits.
func GenerateRoomCode() string {
	var b strings.Builder
	b.Grow(roomCodeLength)
	for range roomCodeLength {
		b.WriteByte(roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))])
	}
	return b.String()
}

// NormalizeRoomCode upper-cases and trims a user-supplied code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// nameKey is the duplicate-detection key for an athlete name.
func nameKey(name string) string {
	return normalize.Key(name)
}
