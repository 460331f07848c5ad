package auth

import (
	"context"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func testSession() *Session {
	return &Session{
		StaffID:     "s1",
		Username:    "reception",
		Name:        "Front Desk",
		Admin:       false,
		Permissions: map[string]bool{"patients": true, "prescriptions": false},
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, testSession(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.StaffID != "s1" || session.Username != "reception" {
		t.Errorf("unexpected session: %+v", session)
	}
	if !session.Permissions["patients"] {
		t.Error("expected patients permission to survive the round trip")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, testSession(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := IssueToken(testSecret, testSession(), -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestCanAccess(t *testing.T) {
	s := testSession()
	if !s.CanAccess("patients") {
		t.Error("expected access to patients")
	}
	if s.CanAccess("prescriptions") {
		t.Error("expected no access to prescriptions")
	}
	if s.CanAccess("inventory") {
		t.Error("expected no access to unlisted module")
	}

	s.Admin = true
	if !s.CanAccess("inventory") {
		t.Error("expected admin to access everything")
	}

	var nilSession *Session
	if nilSession.CanAccess("patients") {
		t.Error("expected nil session to have no access")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil session for empty context")
	}
	ctx := WithSession(context.Background(), testSession())
	if got := FromContext(ctx); got == nil || got.StaffID != "s1" {
		t.Errorf("unexpected session: %+v", got)
	}
}
