package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/domain"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

type staticResolver struct {
	principals map[string]*domain.Principal
}

func (r *staticResolver) ResolvePrincipal(_ context.Context, id string) (*domain.Principal, error) {
	principal, ok := r.principals[id]
	if !ok {
		return nil, auth.ErrPrincipalNotFound
	}
	return principal, nil
}

func newTestApp(resolver auth.PrincipalResolver, tokens *auth.TokenManager) *fiber.App {
	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil))

	mw := auth.NewAuthMiddleware(tokens, resolver)
	protected := app.Group("/protected", mw.Handle)
	protected.Get("/any", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	protected.Get("/admin-only", auth.RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", nil)
	})
	return app
}

func TestErrorEnvelope(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 30)
	app := newTestApp(&staticResolver{}, tokens)

	resp, err := app.Test(httptest.NewRequest(stdhttp.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("code = %q, want NOT_FOUND", body.Error.Code)
	}
}

func TestAuthMiddlewareRejectsWithoutToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 30)
	app := newTestApp(&staticResolver{}, tokens)

	resp, err := app.Test(httptest.NewRequest(stdhttp.MethodGet, "/protected/any", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthMiddlewareRejectsDeletedAccount(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 30)
	app := newTestApp(&staticResolver{}, tokens)

	token, _, err := tokens.GenerateToken("ghost")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	req := httptest.NewRequest(stdhttp.MethodGet, "/protected/any", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRoleGate(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 30)
	resolver := &staticResolver{principals: map[string]*domain.Principal{
		"adm-1": {ID: "adm-1", Kind: domain.KindAdmin, Role: domain.RoleAdmin},
		"stf-1": {ID: "stf-1", Kind: domain.KindStaff, Role: domain.RoleTechnician},
	}}
	app := newTestApp(resolver, tokens)

	cases := []struct {
		name   string
		id     string
		path   string
		status int
	}{
		{"admin passes gate", "adm-1", "/protected/admin-only", stdhttp.StatusOK},
		{"technician blocked by gate", "stf-1", "/protected/admin-only", stdhttp.StatusForbidden},
		{"technician allowed elsewhere", "stf-1", "/protected/any", stdhttp.StatusOK},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := tokens.GenerateToken(tt.id)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			req := httptest.NewRequest(stdhttp.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}
