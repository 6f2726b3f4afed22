package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// Temporary-credential alphabet. Ambiguous characters (0/O, 1/l/I) are
// excluded so a credential read aloud or retyped from a mail survives.
const (
	credentialUpper   = "ABCDEFGHJKMNPQRSTUVWXYZ"
	credentialLower   = "abcdefghjkmnpqrstuvwxyz"
	credentialDigits  = "23456789"
	credentialSymbols = "!@#$%^&*-_=+"
)

const (
	// MinCredentialLength is the provider's floor; shorter requests are
	// clamped up to it.
	MinCredentialLength = 8
	// DefaultCredentialLength is used when configuration gives none.
	DefaultCredentialLength = 12

	// maxCredentialAttempts bounds the regenerate loop. With a sane RNG a
	// compliant credential appears within a handful of draws; hitting the
	// bound means the randomness source is broken and we fail loudly
	// rather than emit a weak credential.
	maxCredentialAttempts = 16
)

var credentialAlphabet = credentialUpper + credentialLower + credentialDigits + credentialSymbols

// GenerateCredential returns a random temporary credential of the given
// length that contains at least one uppercase letter, one lowercase letter,
// one digit and one symbol from the restricted alphabet. It never returns a
// non-compliant credential: after maxCredentialAttempts draws it gives up
// with ErrCredentialGeneration.
func GenerateCredential(length int) (string, error) {
	if length < MinCredentialLength {
		length = MinCredentialLength
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		candidate, err := randomString(length)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrCredentialGeneration, err)
		}
		if credentialCompliant(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no compliant credential after %d attempts", domain.ErrCredentialGeneration, maxCredentialAttempts)
}

func randomString(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(credentialAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(credentialAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// credentialCompliant is the provider's complexity predicate.
func credentialCompliant(s string) bool {
	var upper, lower, digit, symbol bool
	for _, c := range s {
		switch {
		case strings.ContainsRune(credentialUpper, c):
			upper = true
		case strings.ContainsRune(credentialLower, c):
			lower = true
		case strings.ContainsRune(credentialDigits, c):
			digit = true
		case strings.ContainsRune(credentialSymbols, c):
			symbol = true
		default:
			return false
		}
	}
	return upper && lower && digit && symbol
}
