package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/fault"
)

const maxWebhookBytes = 64 << 10

func HandleCheckout(c *Checkout) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return fault.ErrUnauthenticated
		}

		u, err := c.Start(ctx, web.Param(r, "course_id"), clm.UserID, clm.Email)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, CheckoutResponse{URL: u}, http.StatusOK)
	}
}

func HandleWebhook(wh *Webhook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return fault.ErrInvalidSignature.Wrap(errors.New("event is not signed"))
		}

		if err := wh.Handle(ctx, b, sig); err != nil {
			return err
		}

		return web.Respond(ctx, w, WebhookResponse{Received: true}, http.StatusOK)
	}
}
