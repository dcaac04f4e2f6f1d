package utils

import (
	"context"
	"net/http"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// RequestContext bounds a handler's store calls by d, or 10s when d is unset.
func RequestContext(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultRequestTimeout
	}
	return context.WithTimeout(r.Context(), d)
}
