package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

func withOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

func ownerIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ownerIDKey).(string); ok {
		return v
	}
	return ""
}

// bearerToken extracts the token from the Authorization header, with or
// without the Bearer prefix.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

var startTime = time.Now()

func healthResponse() map[string]any {
	return map[string]any{
		"status":         "healthy",
		"service":        "dbpulse",
		"uptime_seconds": int64(time.Since(startTime).Seconds()),
		"timestamp":      time.Now().Unix(),
	}
}
