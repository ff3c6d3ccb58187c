package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-service/internal/domain"
	apperrors "github.com/spec-kit/classroom-service/pkg/util"
)

// newTestApp wires the gate in front of a probe handler, with the same
// error envelope the service applies globally.
func newTestApp(tm *TokenManager, roles ...domain.Role) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"error": fiber.Map{"code": domainErr.Code, "message": domainErr.Message},
			})
		}
		return nil
	})

	m := NewMiddleware(tm)
	handlers := []fiber.Handler{m.Authenticate}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewMissingCredential()
		}
		return c.JSON(fiber.Map{"sub": claims.Subject, "role": claims.Role})
	})

	app.Get("/probe", handlers...)
	return app
}

func errorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestGateMissingHeader(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm)

	req := httptest.NewRequest("GET", "/probe", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, resp.Body); code != "MISSING_CREDENTIAL" {
		t.Errorf("code = %q, want MISSING_CREDENTIAL", code)
	}
}

func TestGateMalformedHeader(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Token xyz")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, resp.Body); code != "MALFORMED_CREDENTIAL" {
		t.Errorf("code = %q, want MALFORMED_CREDENTIAL", code)
	}
}

func TestGateValidToken(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Sub  string `json:"sub"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Sub != "u1" || payload.Role != "student" {
		t.Errorf("claims = %s/%s, want u1/student", payload.Sub, payload.Role)
	}
}

func TestGateExpiredToken(t *testing.T) {
	tm, now := newTestManager(60)
	app := newTestApp(tm)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	*now = now.Add(61 * time.Minute)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, resp.Body); code != "TOKEN_EXPIRED" {
		t.Errorf("code = %q, want TOKEN_EXPIRED", code)
	}
}

func TestGateInvalidSignature(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm)

	other := NewTokenManager("other-secret", 60)
	token, _, err := other.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if code := errorCode(t, resp.Body); code != "INVALID_SIGNATURE" {
		t.Errorf("code = %q, want INVALID_SIGNATURE", code)
	}
}

func TestRoleGateInsufficientPrivilege(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm, domain.RoleAdmin, domain.RoleTeacher)

	token, _, err := tm.Issue("u1", "alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if code := errorCode(t, resp.Body); code != "INSUFFICIENT_PRIVILEGE" {
		t.Errorf("code = %q, want INSUFFICIENT_PRIVILEGE", code)
	}
}

func TestRoleGateAllowsTeacher(t *testing.T) {
	tm, _ := newTestManager(60)
	app := newTestApp(tm, domain.RoleAdmin, domain.RoleTeacher)

	token, _, err := tm.Issue("u2", "bob", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"plain token", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"trailing whitespace", "Bearer abc.def.ghi  ", "abc.def.ghi", true},
		{"wrong scheme", "Token xyz", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"prefix glued to token", "Bearerabc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := extractBearer(tt.header)
			if ok != tt.ok || token != tt.token {
				t.Errorf("extractBearer(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
			}
		})
	}
}
