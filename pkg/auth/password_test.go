package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	password := "Sekur3P@ss"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("hash should not equal the plaintext password")
	}

	if !VerifyPassword(hash, password) {
		t.Error("VerifyPassword should accept the original password")
	}

	if VerifyPassword(hash, "Sekur3P@ss-wrong") {
		t.Error("VerifyPassword should reject a different password")
	}
}

func TestHashPassword_SaltRandomization(t *testing.T) {
	password := "Sekur3P@ss"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}

	if !VerifyPassword(hash1, password) || !VerifyPassword(hash2, password) {
		t.Error("both hashes should verify against the original password")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	// A corrupted stored hash must read as a mismatch, not a panic or error
	if VerifyPassword("not-a-bcrypt-hash", "whatever") {
		t.Error("malformed hash should never verify")
	}
	if VerifyPassword("", "whatever") {
		t.Error("empty hash should never verify")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		minLen     int
		shouldFail bool
	}{
		{
			name:       "valid strong password",
			password:   "Sekur3P@ss",
			shouldFail: false,
		},
		{
			name:       "valid with one class missing",
			password:   "SekurePess!",
			shouldFail: false,
		},
		{
			name:       "too short",
			password:   "S3k@a",
			shouldFail: true,
		},
		{
			name:       "two classes missing",
			password:   "sekurepess",
			shouldFail: true,
		},
		{
			name:       "common weak pattern",
			password:   "Password@99",
			shouldFail: true,
		},
		{
			name:       "sequential digits pattern",
			password:   "Abc@123456",
			shouldFail: true,
		},
		{
			name:       "too long",
			password:   "Aa1@" + strings.Repeat("x", 140),
			shouldFail: true,
		},
		{
			name:       "custom minimum length",
			password:   "Sh0rt@pw!",
			minLen:     12,
			shouldFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.minLen)

			if tt.shouldFail && err == nil {
				t.Errorf("expected error for %q, got nil", tt.password)
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("expected no error for %q, got: %v", tt.password, err)
			}
		})
	}
}
