package auth

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/fault"
)

type Level int

const (
	Authenticated Level = iota + 1
	Admin
)

// Gate is the single authorization check in front of every protected route.
type Gate struct {
	identity Identity
	adminID  string
}

func NewGate(identity Identity, adminUserID string) *Gate {
	return &Gate{identity: identity, adminID: adminUserID}
}

// Check resolves the caller and verifies it holds the requested level.
func (g *Gate) Check(ctx context.Context, r *http.Request, level Level) (claims.Claims, error) {
	clm, err := g.identity.Resolve(ctx, r)
	if err != nil {
		return claims.Claims{}, fault.ErrUnauthenticated.Wrap(err)
	}
	if clm.UserID == "" {
		return claims.Claims{}, fault.ErrUnauthenticated
	}

	clm.Role = claims.RoleUser
	if g.adminID != "" && clm.UserID == g.adminID {
		clm.Role = claims.RoleAdmin
	}

	if level == Admin && !clm.IsAdmin() {
		return claims.Claims{}, fault.ErrNotAdmin
	}

	return clm, nil
}

func (g *Gate) Require(level Level) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := g.Check(ctx, r, level)
			if err != nil {
				return err
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Optional attaches claims when the caller is signed in and carries on
// anonymously otherwise.
func (g *Gate) Optional() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if Token(r) == "" {
				return handler(ctx, w, r)
			}

			clm, err := g.Check(ctx, r, Authenticated)
			if err != nil {
				return err
			}
			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}
