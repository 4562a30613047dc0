package auth

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// AccessCodeLength is the number of characters in a producer access code.
const AccessCodeLength = 8

// Excludes 0, O, 1 and I.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var ErrInvalidAccessCode = errors.New("invalid access code")

func GenerateAccessCode() (string, error) {
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	var b strings.Builder
	b.Grow(AccessCodeLength)
	for i := 0; i < AccessCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(accessCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeAccessCode uppercases and trims user input. Older codes such as
// "FESTA2024" predate the alphabet above, so only the charset is checked.
func NormalizeAccessCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 4 || len(code) > 32 {
		return "", ErrInvalidAccessCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return "", ErrInvalidAccessCode
		}
	}
	return code, nil
}
