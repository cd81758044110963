package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService() *HMACService {
	return NewHMACService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestHMACService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	operator := uuid.New()

	token, err := svc.GenerateAccessToken(operator, RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.OperatorID != operator {
		t.Fatalf("operator mismatch: %s vs %s", claims.OperatorID, operator)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %q", claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access token type, got %q", claims.TokenType)
	}
}

func TestHMACService_RefreshTokenHasNoRole(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("expected refresh type, got %q", claims.TokenType)
	}
	if claims.Role != "" {
		t.Fatalf("refresh tokens must not carry a role, got %q", claims.Role)
	}
}

func TestHMACService_RejectsGarbage(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_RejectsForeignSecret(t *testing.T) {
	other := NewHMACService("other-access", "other-refresh", time.Hour, time.Hour)
	token, err := other.GenerateAccessToken(uuid.New(), RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := newTestService().ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACService_ReportsExpiry(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.GenerateAccessToken(uuid.New(), RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	fresh := newTestService()
	if _, err := fresh.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
