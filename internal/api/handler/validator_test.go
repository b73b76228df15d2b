package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&loginRequest{Username: strings.Repeat("x", 129), Role: "owner"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"username must be at most 128 characters",
		"password is required",
		"role must be one of: merchant, admin",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}

	if err := v.Validate(&loginRequest{Username: "a1", Password: "pw", Role: "admin"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}
