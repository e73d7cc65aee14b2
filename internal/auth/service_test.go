package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, err := a.IssueJWT("stu-1", RoleStudent)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "stu-1" || c.Role != RoleStudent {
		t.Fatalf("claims = %+v, want sub stu-1 role student", c)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAuthService("secret-a", time.Hour).IssueJWT("stu-1", RoleStudent)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if _, err := NewAuthService("secret-b", time.Hour).Parse(tok); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := NewAuthService("secret", -time.Minute)
	tok, err := a.IssueJWT("stu-1", RoleStudent)
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	if _, err := a.Parse("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
