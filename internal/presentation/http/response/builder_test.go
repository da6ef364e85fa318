package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/runner/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestBuildSuccess(t *testing.T) {
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	require.NoError(t, New(c).WithStatus(http.StatusCreated).WithData(map[string]int{"id": 7}).Build())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":7},"meta":{"requestId":"req-1"}}`, rec.Body.String())
}

func TestBuildAppError(t *testing.T) {
	c, rec := newContext()

	err := errorbank.Conflict("order already has this status", errorbank.WithDetail("status", "READY"))
	require.NoError(t, Error(c, err))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	detail := body["error"].(map[string]any)
	assert.Equal(t, "conflict", detail["kind"])
	assert.Equal(t, "READY", detail["details"].(map[string]any)["status"])
}

func TestBuildPlainErrorIsInternal(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Error(c, errors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
}

func TestBuildErrorKeepsExplicitErrorStatus(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).WithStatus(http.StatusMethodNotAllowed).WithError(errorbank.BadRequest("method not allowed")).Build())

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
