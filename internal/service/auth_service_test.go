package service

import (
	"errors"
	"testing"

	"github.com/newsdesk/internal/db"
)

func TestAuthService_Authenticate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := db.EnsureAdmin(gdb, "Editor", "correct horse"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	svc := NewAuthService(gdb)

	admin, err := svc.Authenticate("Editor", "correct horse")
	if err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if admin.Username != "Editor" {
		t.Fatalf("unexpected admin %q", admin.Username)
	}

	cases := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "Editor", password: "wrong"},
		{name: "username is case sensitive", username: "editor", password: "correct horse"},
		{name: "password is case sensitive", username: "Editor", password: "Correct Horse"},
		{name: "unknown user", username: "ghost", password: "correct horse"},
		{name: "empty", username: "", password: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Authenticate(tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}
