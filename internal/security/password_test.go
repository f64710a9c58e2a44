package security_test

import (
	"strings"
	"testing"

	"github.com/dmunozv/crudhub/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("secret123")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if hash == "secret123" || hash == "" {
		t.Fatalf("hash looks wrong: %q", hash)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}

	if err := security.CheckPassword(hash, "secret123"); err != nil {
		t.Fatalf("CheckPassword with correct password: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong-password"); err == nil {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := security.HashPassword("secret123")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	second, err := security.HashPassword("secret123")

	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}
}
