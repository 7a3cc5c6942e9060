package config

import (
	"time"

	"github.com/irsalhamdi/course-platform/database"
)

type Config struct {
	Web struct {
		Address         string        `conf:"default:0.0.0.0:8000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		Locale          string        `conf:"default:en"`
	}
	Cors struct {
		Origin string `conf:"default:http://localhost:3000"`
	}
	DB     database.Config
	Auth   Auth
	Stripe Stripe
	Mux    Mux
	Rate struct {
		CheckoutBurst  int           `conf:"default:3"`
		CheckoutEvery  time.Duration `conf:"default:20s"`
		CheckoutExpiry time.Duration `conf:"default:10m"`
	}
}

type Auth struct {
	IssuerURL        string        `conf:"required"`
	ClientID         string
	AdminUserID      string        `conf:"required"`
	DiscoveryTimeout time.Duration `conf:"default:10s"`
}

type Stripe struct {
	APISecret       string `conf:"mask"`
	WebhookSecret   string `conf:"mask"`
	Currency        string `conf:"default:jpy"`
	RedirectBaseURL string `conf:"default:http://localhost:3000"`
}

type Mux struct {
	TokenID     string
	TokenSecret string        `conf:"mask"`
	Timeout     time.Duration `conf:"default:30s"`
}
