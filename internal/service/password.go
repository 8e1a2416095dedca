package service

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"boutique/internal/domain"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is fixed; the encoded digest carries the count so
	// it can be raised later without breaking stored credentials.
	PBKDF2Iterations = 100000

	saltLength = 16
	keyLength  = 64
)

// HashPassword derives a salted PBKDF2-SHA512 digest encoded as
// "pbkdf2$<iterations>$<salt-hex>$<key-hex>". A fresh random salt is drawn
// per call, so hashing the same password twice yields different digests.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, keyLength, sha512.New)

	return fmt.Sprintf("%s%d$%s$%s",
		domain.DigestPrefix,
		PBKDF2Iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	), nil
}

// VerifyPassword checks a password against a stored credential. Tagged
// digests are recomputed with the encoded parameters and compared in
// constant time. A credential without the tag is a legacy plaintext value:
// verification falls back to direct equality. That branch exists only for
// pre-migration records; MigrateLegacyPasswords retires it.
func VerifyPassword(password, stored string) bool {
	if !strings.HasPrefix(stored, domain.DigestPrefix) {
		// Legacy plaintext fallback.
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	key, err := hex.DecodeString(parts[3])
	if err != nil {
		return false
	}

	calc := pbkdf2.Key([]byte(password), salt, iterations, len(key), sha512.New)
	return subtle.ConstantTimeCompare(key, calc) == 1
}
