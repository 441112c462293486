package middlewares

import (
	"context"
	"crypto/subtle"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	HeaderAPIKey = "x-api-key"
)

// RequireOperatorAPIKey admits only requests carrying the configured operator key. With no
// key configured every request is rejected. The optional X-Operator-ID header names the
// operator for comment authorship.
func (m *Middlewares) RequireOperatorAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := m.InternalConfig.App.OperatorAPIKey
		apiKey := r.Header.Get(HeaderAPIKey)

		if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			m.Log.Warn("Middlewares.RequireOperatorAPIKey rejected request",
				zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFrom(r.Context())),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		operatorID := strings.TrimSpace(r.Header.Get(constvars.HeaderXOperatorID))
		if operatorID == "" {
			operatorID = constvars.DefaultOperatorID
		}
		ctx := context.WithValue(r.Context(), constvars.CONTEXT_OPERATOR_ID_KEY, operatorID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
