package utils

import (
	"errors"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes; reject instead of truncating silently.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// passwordCost reads BCRYPT_COST so test runs can hash at bcrypt.MinCost.
func passwordCost() int {
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
			return n
		}
	}
	return bcrypt.DefaultCost
}

func HashPassword(s string) ([]byte, error) {
	if len(s) > 72 {
		return nil, ErrPasswordTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(s), passwordCost())
}

// ComparePassword returns nil on a match and bcrypt.ErrMismatchedHashAndPassword otherwise.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
