package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/observability"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

func newMiddlewareApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("bad input", map[string]any{"field": "date"})
	})
	app.Get("/persistence", func(c *fiber.Ctx) error {
		return apperrors.NewPersistenceError("save day schedule", errors.New("timeout"))
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body["error"].(map[string]any)
}

func TestErrorHandlingMiddleware(t *testing.T) {
	app := newMiddlewareApp()

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"domain validation", fiber.MethodGet, "/validation", 400, "VALIDATION_FAILED"},
		{"persistence", fiber.MethodGet, "/persistence", 503, "PERSISTENCE_FAILED"},
		{"panic", fiber.MethodGet, "/panic", 500, "INTERNAL_ERROR"},
		{"unknown route", fiber.MethodGet, "/missing", 404, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, errBody := call(t, app, tt.method, tt.path)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errBody["code"])
		})
	}

	_, errBody := call(t, app, fiber.MethodGet, "/validation")
	assert.Equal(t, map[string]any{"field": "date"}, errBody["details"])
	_, errBody = call(t, app, fiber.MethodGet, "/persistence")
	assert.Equal(t, "save day schedule failed", errBody["message"])
}

func TestFiberErrorCode(t *testing.T) {
	assert.Equal(t, "METHOD_NOT_ALLOWED", fiberErrorCode(fiber.StatusMethodNotAllowed))
	assert.Equal(t, "BAD_REQUEST", fiberErrorCode(fiber.StatusBadRequest))
	assert.Equal(t, "INTERNAL_ERROR", fiberErrorCode(fiber.StatusBadGateway))
}
