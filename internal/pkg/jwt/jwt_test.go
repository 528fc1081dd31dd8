package jwt

import (
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	token, err := SignWithOptions("user-1", time.Hour, SignOptions{
		Email:     "owner@example.com",
		Role:      "owner",
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("SignWithOptions: %v", err)
	}

	claims, err := Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("uid = %q, want user-1", claims.UserID)
	}
	if claims.SessionID != "sess-1" {
		t.Fatalf("sid = %q, want sess-1", claims.SessionID)
	}
	if claims.Email != "owner@example.com" || claims.Role != "owner" {
		t.Fatalf("email/role = %q/%q", claims.Email, claims.Role)
	}
}

func TestParseExpired(t *testing.T) {
	token, err := Sign("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Parse(token); err == nil {
		t.Fatal("Parse accepted an expired token")
	}
}

func TestParseWrongSecret(t *testing.T) {
	token, err := Sign("user-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	SetSecret("another-secret")
	defer SetSecret(defaultSecret)

	if _, err := Parse(token); err == nil {
		t.Fatal("Parse accepted a token signed with a different secret")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("not-a-token"); err == nil {
		t.Fatal("Parse accepted garbage")
	}
}
