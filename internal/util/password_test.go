package util

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" || hash == "s3cret-pass" {
		t.Fatalf("expected an encoded hash, got %q", hash)
	}
	if !VerifyPassword("s3cret-pass", hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-pass", hash) {
		t.Fatalf("expected password verification to fail for wrong password")
	}
}

func TestHashPasswordDefaultsCost(t *testing.T) {
	hash, err := HashPassword("secret1", 0)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost returned error: %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Fatalf("expected cost %d, got %d", DefaultBcryptCost, cost)
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := HashPassword("", bcrypt.MinCost); err == nil {
		t.Fatalf("expected error when password empty")
	}
	if VerifyPassword("", "$2a$04$abc") {
		t.Fatalf("expected empty password to be rejected")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("expected six characters to pass, got %v", err)
	}
}

func TestGenerateResetToken(t *testing.T) {
	first, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	second, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if len(first) != 64 || strings.Trim(first, "0123456789abcdef") != "" {
		t.Fatalf("expected 64 hex characters, got %q", first)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
}
