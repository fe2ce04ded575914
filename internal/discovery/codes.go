package discovery

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/wpals0817-max/policenthief/internal/statestore"
)

const (
	CodeLength = 6

	// Excludes visually ambiguous characters (0/O, 1/I/L).
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 100
)

// GenerateCode returns a random room code.
func GenerateCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
			continue
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

// UniqueCode generates a code not held by any non-expired room. Expired
// rooms do not count as collisions since lookups no longer resolve them.
func UniqueCode(repo statestore.RoomRepository, now time.Time) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := GenerateCode()
		_, err := repo.FindByCode(code, now)
		if errors.Is(err, statestore.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking code %s: %w", code, err)
		}
	}
	return "", fmt.Errorf("no unique code after %d attempts", maxCodeAttempts)
}
