package middleware

import "context"

// requestIDKey is the key used to store the request id in the request context.
const requestIDKey = contextKey("requestID")

// GetRequestIDFromCtx returns the id assigned by StructuredLoggingMiddleware, if any.
func GetRequestIDFromCtx(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithRequestID returns a context carrying id, for work that starts outside a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
