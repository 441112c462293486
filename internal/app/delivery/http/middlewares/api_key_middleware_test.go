package middlewares

import (
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/pkg/constvars"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequireOperatorAPIKey(t *testing.T) {
	testAPIKey := "test-operator-api-key-12345"
	middlewares := NewMiddlewares(zap.NewNop(), &config.InternalConfig{
		App: config.App{OperatorAPIKey: testAPIKey},
	})

	var seenOperator string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenOperator, _ = r.Context().Value(constvars.CONTEXT_OPERATOR_ID_KEY).(string)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})
	handler := middlewares.RequireOperatorAPIKey(testHandler)

	t.Run("Valid API Key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/form-errors/E1/resolve", nil)
		req.Header.Set(HeaderAPIKey, testAPIKey)
		req.Header.Set(constvars.HeaderXOperatorID, "nurse-7")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "success", rr.Body.String())
		assert.Equal(t, "nurse-7", seenOperator)
	})

	t.Run("Valid API Key Without Operator", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/form-errors", nil)
		req.Header.Set(HeaderAPIKey, testAPIKey)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, constvars.DefaultOperatorID, seenOperator)
	})

	rejected := map[string]string{
		"Missing API Key":  "",
		"Invalid API Key":  "invalid-api-key",
		"Case Sensitivity": "TEST-OPERATOR-API-KEY-12345",
		"Whitespace":       " " + testAPIKey + " ",
	}
	for name, apiKey := range rejected {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/form-errors", nil)
			if apiKey != "" {
				req.Header.Set(HeaderAPIKey, apiKey)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	t.Run("No Key Configured", func(t *testing.T) {
		unconfigured := NewMiddlewares(zap.NewNop(), &config.InternalConfig{})
		req := httptest.NewRequest("GET", "/api/v1/form-errors", nil)
		req.Header.Set(HeaderAPIKey, "")

		rr := httptest.NewRecorder()
		unconfigured.RequireOperatorAPIKey(testHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	middlewares := NewMiddlewares(zap.NewNop(), &config.InternalConfig{})
	var seen string
	handler := middlewares.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	}))

	t.Run("Client Request ID Kept", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-id")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Generated When Missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Contains(t, seen, constvars.REQUEST_ID_PREFIX)
		assert.Equal(t, seen, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	middlewares := NewMiddlewares(zap.NewNop(), &config.InternalConfig{})
	handler := middlewares.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
