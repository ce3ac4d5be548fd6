package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stay-fcsd/ecommerce-api/internal/observability"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

func newMiddlewareApp(debugErrors bool) (*fiber.App, *observability.Metrics) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0, debugErrors)

	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict(apperrors.MsgEmailTaken)
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.",
			apperrors.FieldError{Field: "email", Message: "must not be blank"})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app, metrics
}

func decodeErrorBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestErrorMiddlewareRendersDomainError(t *testing.T) {
	app, _ := newMiddlewareApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeErrorBody(t, resp)
	require.Equal(t, float64(http.StatusConflict), body["status"])
	require.Equal(t, apperrors.MsgEmailTaken, body["message"])
	require.NotContains(t, body, "stackTrace")
}

func TestErrorMiddlewareRendersFieldErrors(t *testing.T) {
	app, _ := newMiddlewareApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/invalid", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeErrorBody(t, resp)
	fieldErrors, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, fieldErrors, 1)

	first, ok := fieldErrors[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "email", first["field"])
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app, _ := newMiddlewareApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeErrorBody(t, resp)
	require.Equal(t, "internal server error", body["message"])
	require.NotContains(t, body, "stackTrace")
}

func TestErrorMiddlewareTraceGatedBehindDebugFlag(t *testing.T) {
	// Debug off: trace query param must not leak anything.
	app, _ := newMiddlewareApp(false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom?trace=true", nil))
	require.NoError(t, err)
	body := decodeErrorBody(t, resp)
	require.NotContains(t, body, "stackTrace")

	// Debug on and trace requested: stack trace included.
	app, _ = newMiddlewareApp(true)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom?trace=true", nil))
	require.NoError(t, err)
	body = decodeErrorBody(t, resp)
	require.Contains(t, body, "stackTrace")

	// Debug on but trace not requested: still hidden.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	body = decodeErrorBody(t, resp)
	require.NotContains(t, body, "stackTrace")
}

func TestErrorMiddlewareRendersRouterNotFound(t *testing.T) {
	app, _ := newMiddlewareApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeErrorBody(t, resp)
	require.Equal(t, float64(http.StatusNotFound), body["status"])
}

func TestRequestMetricsRecorded(t *testing.T) {
	app, metrics := newMiddlewareApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), metrics.RequestTotal("/ok", http.MethodGet, http.StatusOK))
}
