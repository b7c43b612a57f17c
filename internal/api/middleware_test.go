package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router
}

func serve(router http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()
		w := serve(newTestRouter(CORS([]string{"*"})), http.MethodGet, "/test", map[string]string{"Origin": "https://anywhere.example"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		t.Parallel()
		w := serve(newTestRouter(CORS([]string{"http://localhost:3000"})), http.MethodGet, "/test", map[string]string{"Origin": "http://localhost:3000"})

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		t.Parallel()
		w := serve(newTestRouter(CORS([]string{"http://localhost:3000"})), http.MethodGet, "/test", map[string]string{"Origin": "https://evil.example"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered without a route", func(t *testing.T) {
		t.Parallel()
		w := serve(newTestRouter(CORS([]string{"*"})), http.MethodOptions, "/test", map[string]string{"Origin": "https://anywhere.example"})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	router := newTestRouter(RequestID())

	w := serve(router, http.MethodGet, "/test", nil)
	_, err := uuid.Parse(w.Header().Get(headerRequestID))
	assert.NoError(t, err)

	w = serve(router, http.MethodGet, "/test", map[string]string{headerRequestID: "given-id"})
	assert.Equal(t, "given-id", w.Header().Get(headerRequestID))
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	router := newTestRouter(RequestID(), Logger(), Recovery())

	w := serve(router, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
