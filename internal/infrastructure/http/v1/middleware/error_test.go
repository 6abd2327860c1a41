package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
)

func newErrorTestRouter(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(fail)
		c.Abort()
	})
	return router
}

func doRequest(t *testing.T, router *gin.Engine) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	router := newErrorTestRouter(apperror.NewNotFound("product", "42"))

	status, body := doRequest(t, router)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperror.CodeNotFound, body["code"])
}

func TestErrorHandlerCarriesDetails(t *testing.T) {
	router := newErrorTestRouter(apperror.NewInsufficientStock("p1", 10, 4))

	status, body := doRequest(t, router)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4.0, details["available"])
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	router := newErrorTestRouter(assert.AnError)

	status, body := doRequest(t, router)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "Internal server error", body["message"])
}
