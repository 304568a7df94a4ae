package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func contextWithSubject(sub string) context.Context {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
	return context.WithValue(context.Background(), ClaimsKey, claims)
}

func TestGetUserIDFromContext(t *testing.T) {
	if got := GetUserIDFromContext(contextWithSubject("abc")); got != "abc" {
		t.Errorf("GetUserIDFromContext() = %q, want abc", got)
	}
	if got := GetUserIDFromContext(context.Background()); got != "" {
		t.Errorf("GetUserIDFromContext() on empty context = %q, want empty", got)
	}
}

func TestGetUserUUIDFromContext(t *testing.T) {
	userID := uuid.New()

	got, ok := GetUserUUIDFromContext(contextWithSubject(userID.String()))
	if !ok || got != userID {
		t.Errorf("GetUserUUIDFromContext() = %v, %v; want %v, true", got, ok, userID)
	}

	if _, ok := GetUserUUIDFromContext(contextWithSubject("not-a-uuid")); ok {
		t.Error("GetUserUUIDFromContext() ok = true for malformed subject")
	}
	if _, ok := GetUserUUIDFromContext(context.Background()); ok {
		t.Error("GetUserUUIDFromContext() ok = true for empty context")
	}
}

func TestRequireUserUUIDFromContext(t *testing.T) {
	userID := uuid.New()

	got, err := RequireUserUUIDFromContext(contextWithSubject(userID.String()))
	if err != nil || got != userID {
		t.Errorf("RequireUserUUIDFromContext() = %v, %v; want %v, nil", got, err, userID)
	}

	if _, err := RequireUserUUIDFromContext(context.Background()); err == nil {
		t.Error("RequireUserUUIDFromContext() error = nil for empty context")
	}
}
