package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/rate"
)

// RateLimit throttles each signed-in user, falling back to the remote
// address for anonymous callers.
func RateLimit(l *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			key := r.RemoteAddr
			if c, err := claims.Get(ctx); err == nil {
				key = c.UserID
			}

			if !l.Check(key) {
				return weberr.TooManyRequests(errors.New("rate limit exceeded"), weberr.WithFields(map[string]any{"limit_key": key}))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
