package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if h == "s3cret" || !strings.HasPrefix(h, "$2a$12$") {
		t.Fatalf("unexpected hash %q", h)
	}
	if err := CheckPassword(h, "s3cret"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := CheckPassword(h, "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
	if err := CheckPassword("", "s3cret"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("empty hash must never match, got %v", err)
	}
}
