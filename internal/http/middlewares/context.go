package middlewares

import "context"

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID devuelve "" si WithRequestID no corrió.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
