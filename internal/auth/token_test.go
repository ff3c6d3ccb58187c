package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/classroom-service/internal/domain"
)

// newTestManager returns a manager with a controllable clock.
func newTestManager(ttlMinutes int) (*TokenManager, *time.Time) {
	tm := NewTokenManager("test-secret", ttlMinutes)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := &current
	tm.now = func() time.Time { return *now }
	return tm, now
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	tm, _ := newTestManager(60)

	token, exp, err := tm.Issue("u1", "alice", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject = %q, want u1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
	if claims.UserRole() != domain.RoleTeacher {
		t.Errorf("role = %q, want teacher", claims.UserRole())
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Errorf("exp claim = %v, want %v", claims.ExpiresAt.Time, exp)
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		t.Error("expires_at must be after issued_at")
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	tm, _ := newTestManager(60)

	if _, _, err := tm.Issue("u1", "alice", domain.Role("superuser")); err == nil {
		t.Fatal("expected error issuing token for unknown role")
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	tm, _ := newTestManager(60)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// flip a byte inside the signed payload
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	payload := []byte(parts[1])
	if payload[2] == 'A' {
		payload[2] = 'B'
	} else {
		payload[2] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := tm.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify: expected ErrInvalidSignature, got %v", err)
	}
	if _, err := tm.VerifyForRefresh(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifyForRefresh: expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	tm, _ := newTestManager(60)

	if _, err := tm.Verify("not-a-token"); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	tm, _ := newTestManager(60)
	other := NewTokenManager("other-secret", 60)

	token, _, err := other.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := tm.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyExpiryBoundaries(t *testing.T) {
	tm, now := newTestManager(60)
	issuedAt := *now

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// one second before expiry the token is still fresh
	*now = issuedAt.Add(60*time.Minute - time.Second)
	if _, err := tm.Verify(token); err != nil {
		t.Errorf("Verify just before expiry failed: %v", err)
	}

	// one second after expiry it is rejected
	*now = issuedAt.Add(60*time.Minute + time.Second)
	if _, err := tm.Verify(token); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyIdempotent(t *testing.T) {
	tm, _ := newTestManager(60)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	first, err1 := tm.Verify(token)
	second, err2 := tm.Verify(token)
	if err1 != nil || err2 != nil {
		t.Fatalf("Verify failed: %v / %v", err1, err2)
	}
	if first.Subject != second.Subject || first.Username != second.Username || first.Role != second.Role {
		t.Error("repeated verification produced different claims")
	}
}

func TestRefreshWithinGrace(t *testing.T) {
	tm, now := newTestManager(60)
	issuedAt := *now

	token, oldExp, err := tm.Issue("u1", "alice", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// ten minutes past expiry, inside the grace window
	*now = issuedAt.Add(70 * time.Minute)

	newToken, newExp, err := tm.Refresh(token)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !newExp.After(oldExp) {
		t.Errorf("new exp %v not after old exp %v", newExp, oldExp)
	}

	claims, err := tm.Verify(newToken)
	if err != nil {
		t.Fatalf("Verify of refreshed token failed: %v", err)
	}
	if claims.Subject != "u1" || claims.UserRole() != domain.RoleTeacher {
		t.Errorf("refreshed claims = %s/%s, want u1/teacher", claims.Subject, claims.UserRole())
	}
}

func TestRefreshWindowExceeded(t *testing.T) {
	tm, now := newTestManager(60)
	issuedAt := *now

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// exactly at the end of the grace window the token is dead
	*now = issuedAt.Add(60*time.Minute + RefreshGraceWindow)
	if _, _, err := tm.Refresh(token); !errors.Is(err, ErrRefreshWindowExceeded) {
		t.Errorf("at window edge: expected ErrRefreshWindowExceeded, got %v", err)
	}

	*now = issuedAt.Add(60*time.Minute + RefreshGraceWindow + time.Minute)
	if _, _, err := tm.Refresh(token); !errors.Is(err, ErrRefreshWindowExceeded) {
		t.Errorf("past window: expected ErrRefreshWindowExceeded, got %v", err)
	}
}

func TestRefreshFreshTokenAllowed(t *testing.T) {
	tm, _ := newTestManager(60)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := tm.Refresh(token); err != nil {
		t.Errorf("refresh of a still-fresh token failed: %v", err)
	}
}

func TestLoginVerifyRefreshScenario(t *testing.T) {
	tm, now := newTestManager(60)
	issuedAt := *now

	token, _, err := tm.Issue("u1", "alice", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("immediate Verify failed: %v", err)
	}
	if claims.UserRole() != domain.RoleTeacher {
		t.Fatalf("role = %q, want teacher", claims.UserRole())
	}

	*now = issuedAt.Add(61 * time.Minute)
	if _, err := tm.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after 61m, got %v", err)
	}

	newToken, _, err := tm.Refresh(token)
	if err != nil {
		t.Fatalf("Refresh within grace failed: %v", err)
	}
	newClaims, err := tm.Verify(newToken)
	if err != nil {
		t.Fatalf("Verify of refreshed token failed: %v", err)
	}
	if newClaims.UserRole() != domain.RoleTeacher {
		t.Errorf("refreshed role = %q, want teacher", newClaims.UserRole())
	}
}
