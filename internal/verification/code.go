package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"docverify-portal/internal/validation"
)

var tenPow = big.NewInt(1_000_000)

// GenerateCode returns a random six-digit code such as "042917".
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, tenPow)
	if err != nil {
		return "", err
	}
	s := n.String()
	for len(s) < validation.CodeLength {
		s = "0" + s
	}
	return s, nil
}

// HashCode returns the hex SHA-256 of code. Only hashes are kept between Issue and Check.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// CodeMatches compares code against storedHash in constant time.
func CodeMatches(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(storedHash)) == 1
}
