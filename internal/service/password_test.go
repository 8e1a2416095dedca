package service

import (
	"strings"
	"testing"

	"boutique/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_HashVerifyRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any password verifies against its own digest", prop.ForAll(
		func(password string) bool {
			digest, err := HashPassword(password)
			if err != nil {
				t.Logf("FAIL: hash error: %v", err)
				return false
			}
			if !VerifyPassword(password, digest) {
				t.Logf("FAIL: digest did not verify")
				return false
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("two digests of the same password differ", prop.ForAll(
		func(password string) bool {
			first, err := HashPassword(password)
			if err != nil {
				return false
			}
			second, err := HashPassword(password)
			if err != nil {
				return false
			}
			return first != second
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestHashPasswordEncoding(t *testing.T) {
	digest, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !strings.HasPrefix(digest, domain.DigestPrefix) {
		t.Errorf("digest missing tag: %s", digest)
	}

	parts := strings.Split(digest, "$")
	if len(parts) != 4 {
		t.Fatalf("expected 4 digest segments, got %d", len(parts))
	}
	if parts[1] != "100000" {
		t.Errorf("expected iteration count 100000, got %s", parts[1])
	}
	// 16-byte salt and 64-byte key, hex encoded.
	if len(parts[2]) != 32 {
		t.Errorf("expected 32 hex chars of salt, got %d", len(parts[2]))
	}
	if len(parts[3]) != 128 {
		t.Errorf("expected 128 hex chars of key, got %d", len(parts[3]))
	}
}

func TestVerifyPassword(t *testing.T) {
	digest, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
	}{
		{"matching digest", "correct horse", digest, true},
		{"wrong password", "battery staple", digest, false},
		{"legacy plaintext match", "oldpass", "oldpass", true},
		{"legacy plaintext mismatch", "newpass", "oldpass", false},
		{"empty stored value", "anything", "", false},
		{"malformed digest", "anything", "pbkdf2$abc", false},
		{"bad salt hex", "anything", "pbkdf2$100000$zz$zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.password, tt.stored); got != tt.want {
				t.Errorf("VerifyPassword(%q, %q) = %v, want %v", tt.password, tt.stored, got, tt.want)
			}
		})
	}
}
