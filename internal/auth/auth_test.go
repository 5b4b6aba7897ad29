// internal/auth/auth_test.go
package auth

import (
	"testing"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", DefaultParams)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	match, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Fatal("expected password to match its own hash")
	}

	match, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if match {
		t.Fatal("expected wrong password to be rejected")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-an-encoded-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestSessionJWTRoundtrip(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	token, err := CreateJWT("user-123")
	if err != nil {
		t.Fatalf("CreateJWT failed: %v", err)
	}

	sub, err := AuthenticateJWT(token)
	if err != nil {
		t.Fatalf("AuthenticateJWT failed: %v", err)
	}
	if sub != "user-123" {
		t.Fatalf("expected sub user-123, got %q", sub)
	}
}

func TestAuthenticateJWTRejectsGarbage(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := AuthenticateJWT("not.a.jwt"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}
