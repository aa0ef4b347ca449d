package service

import (
	"os"
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	token, err := GenerateJWT(42, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	accountID, role, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if accountID != 42 {
		t.Errorf("account id = %d, want 42", accountID)
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	if _, _, err := ParseJWT("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}

	os.Setenv("JWT_SECRET", "other-secret")
	InitJWT()
	token, err := GenerateJWT(1, "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	os.Setenv("JWT_SECRET", "test-secret")
	InitJWT()
	if _, _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for token signed with old secret after rotation")
	}
}
