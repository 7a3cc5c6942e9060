package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/course-platform/api"
	"github.com/irsalhamdi/course-platform/config"
	"github.com/irsalhamdi/course-platform/core/auth"
	"github.com/irsalhamdi/course-platform/core/publish"
	"github.com/irsalhamdi/course-platform/core/purchase"
	"github.com/irsalhamdi/course-platform/core/video"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "COURSES"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	logger.Infof("startup config:\n%s", out)

	if err := validate.SetLocale(cfg.Web.Locale); err != nil {
		return err
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate the database: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Auth.DiscoveryTimeout)
	defer cancel()
	identity, err := auth.NewOIDC(ctx, auth.OIDCConfig{
		IssuerURL: cfg.Auth.IssuerURL,
		ClientID:  cfg.Auth.ClientID,
	})
	if err != nil {
		return fmt.Errorf("failed to discover the identity provider: %w", err)
	}

	strp := &stripecl.API{}
	strp.Init(cfg.Stripe.APISecret, nil)

	coord := video.NewCoordinator(logger, db, video.NewMux(cfg.Mux.TokenID, cfg.Mux.TokenSecret, cfg.Mux.Timeout))

	checkout := purchase.NewCheckout(logger, db, purchase.NewStripe(strp), purchase.CheckoutConfig{
		Currency:        cfg.Stripe.Currency,
		RedirectBaseURL: cfg.Stripe.RedirectBaseURL,
	})

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	limiter := rate.NewLimiter(limiterCtx, cfg.Rate.CheckoutBurst, cfg.Rate.CheckoutEvery, cfg.Rate.CheckoutExpiry)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:  cfg.Cors.Origin,
		Log:         logger,
		DB:          db,
		Gate:        auth.NewGate(identity, cfg.Auth.AdminUserID),
		Coordinator: coord,
		Publisher:   publish.NewService(logger, db, coord),
		Checkout:    checkout,
		Webhook:     purchase.NewWebhook(logger, db, cfg.Stripe.WebhookSecret),
		Limiter:     limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
