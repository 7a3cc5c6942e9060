package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/course-platform/core/claims"
	"golang.org/x/oauth2"
)

// SessionCookie is read when the request carries no Authorization header.
const SessionCookie = "__session"

var ErrNoToken = errors.New("request carries no session token")

// Identity resolves the user behind a request. Role is left empty; the Gate
// decides it.
type Identity interface {
	Resolve(ctx context.Context, r *http.Request) (claims.Claims, error)
}

type OIDCConfig struct {
	IssuerURL string
	ClientID  string
}

// OIDC verifies session tokens issued by an OpenID Connect provider.
type OIDC struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

func NewOIDC(ctx context.Context, cfg OIDCConfig) (*OIDC, error) {
	p, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering oidc provider %s: %w", cfg.IssuerURL, err)
	}

	v := p.Verifier(&oidc.Config{
		ClientID:          cfg.ClientID,
		SkipClientIDCheck: cfg.ClientID == "",
	})

	return &OIDC{provider: p, verifier: v}, nil
}

func (o *OIDC) Resolve(ctx context.Context, r *http.Request) (claims.Claims, error) {
	raw := Token(r)
	if raw == "" {
		return claims.Claims{}, ErrNoToken
	}

	tok, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return claims.Claims{}, fmt.Errorf("verifying session token: %w", err)
	}

	var c struct {
		Email string `json:"email"`
	}
	if err := tok.Claims(&c); err != nil {
		return claims.Claims{}, fmt.Errorf("decoding session claims: %w", err)
	}

	email := c.Email
	if email == "" {
		email, err = o.email(ctx, raw)
		if err != nil {
			return claims.Claims{}, err
		}
	}

	return claims.Claims{UserID: tok.Subject, Email: email}, nil
}

// email asks the userinfo endpoint for the address when the token omits it.
func (o *OIDC) email(ctx context.Context, raw string) (string, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: raw, TokenType: "Bearer"})

	info, err := o.provider.UserInfo(ctx, ts)
	if err != nil {
		return "", fmt.Errorf("fetching userinfo: %w", err)
	}
	return info.Email, nil
}

// Token extracts the bearer token from the Authorization header or the
// session cookie.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}

	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
