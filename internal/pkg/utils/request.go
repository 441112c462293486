package utils

import (
	"context"
	"mobileforms-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

// RequestIDFrom returns the request id carried by ctx, or an empty string.
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}

// WithRequestID returns ctx tagged with a fresh request id unless it already has one.
// Background passes use it so their log lines can be correlated like HTTP requests.
func WithRequestID(ctx context.Context) context.Context {
	if RequestIDFrom(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, GenerateRequestID())
}
