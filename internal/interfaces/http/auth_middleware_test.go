package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// buildRoleApp app mínima con JWT + RBAC delante de un handler que responde 200.
func buildRoleApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func getProtected(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		header   func(t *testing.T) string
		wantCode int
		wantBody string
	}{
		{
			name:     "rol permitido",
			allowed:  []string{apphttp.RoleAdmin},
			header:   func(t *testing.T) string { return bearer(t, apphttp.RoleAdmin) },
			wantCode: http.StatusOK,
		},
		{
			name:     "uno de varios roles",
			allowed:  []string{apphttp.RoleAdmin, apphttp.RoleBodeguero},
			header:   func(t *testing.T) string { return bearer(t, apphttp.RoleBodeguero) },
			wantCode: http.StatusOK,
		},
		{
			name:     "rol no permitido",
			allowed:  []string{apphttp.RoleAdmin, apphttp.RoleBodeguero},
			header:   func(t *testing.T) string { return bearer(t, apphttp.RoleVendedor) },
			wantCode: http.StatusForbidden,
			wantBody: "FORBIDDEN",
		},
		{
			name:     "token sin rol",
			allowed:  []string{apphttp.RoleAdmin},
			header:   func(t *testing.T) string { return bearer(t, "") },
			wantCode: http.StatusUnauthorized,
			wantBody: "MISSING_ROLE",
		},
		{
			name:     "sin header",
			allowed:  []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "" },
			wantCode: http.StatusUnauthorized,
			wantBody: "MISSING_TOKEN",
		},
		{
			name:     "token malformado",
			allowed:  []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "Bearer token.invalido.aqui" },
			wantCode: http.StatusUnauthorized,
			wantBody: "INVALID_TOKEN",
		},
		{
			name:     "esquema distinto de Bearer",
			allowed:  []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
			wantCode: http.StatusUnauthorized,
			wantBody: "INVALID_TOKEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := getProtected(t, buildRoleApp(tt.allowed...), tt.header(t))
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, apphttp.RoleBodeguero))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}
