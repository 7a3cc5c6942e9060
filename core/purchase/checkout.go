package purchase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CheckoutConfig struct {
	Currency        string
	RedirectBaseURL string
}

// Checkout opens payment sessions for single courses. The purchase row is
// only written by the webhook once the session completes.
type Checkout struct {
	log       logrus.FieldLogger
	db        *sqlx.DB
	payments  Payments
	customers *CustomerResolver
	cfg       CheckoutConfig
}

func NewCheckout(log logrus.FieldLogger, db *sqlx.DB, payments Payments, cfg CheckoutConfig) *Checkout {
	return &Checkout{
		log:       log,
		db:        db,
		payments:  payments,
		customers: NewCustomerResolver(log, db, payments),
		cfg:       cfg,
	}
}

// Start returns the url of a new checkout session for the course. The
// ownership check and the session creation are not atomic: two concurrent
// calls may both open a session, and the webhook keeps a single purchase.
func (c *Checkout) Start(ctx context.Context, courseID string, userID string, email string) (string, error) {
	crs, err := course.Fetch(ctx, c.db, courseID)
	if err != nil {
		return "", err
	}
	if !crs.Visible() {
		return "", fault.ErrCourseNotFound
	}

	owned, err := Exists(ctx, c.db, courseID, userID)
	if err != nil {
		return "", err
	}
	if owned {
		return "", fault.ErrPurchaseAlreadyExists
	}

	customerID, err := c.customers.Resolve(ctx, userID, email)
	if err != nil {
		return "", err
	}

	sess := Session{
		CustomerID: customerID,
		Items:      []LineItem{lineItem(crs, c.cfg.Currency)},
		SuccessURL: redirectURL(c.cfg.RedirectBaseURL, courseID, "success"),
		CancelURL:  redirectURL(c.cfg.RedirectBaseURL, courseID, "canceled"),
		Metadata: map[string]string{
			MetaCourseID: courseID,
			MetaUserID:   userID,
		},
	}

	u, err := c.payments.CreateCheckoutSession(ctx, sess)
	if err != nil {
		return "", fault.Provider(fmt.Errorf("creating session for course[%s]: %w", courseID, err))
	}

	c.log.WithFields(logrus.Fields{
		"course_id": courseID,
		"user_id":   userID,
	}).Info("checkout session created")

	return u, nil
}

func lineItem(c course.Course, currency string) LineItem {
	it := LineItem{
		Name:     c.Title,
		Currency: currency,
		Quantity: 1,
	}
	if c.Description != nil {
		it.Description = *c.Description
	}
	if c.Price != nil {
		it.Amount = int64(*c.Price)
	}
	return it
}

func redirectURL(base string, courseID string, flag string) string {
	q := make(url.Values)
	q.Set(flag, "1")
	return base + "/courses/" + url.PathEscape(courseID) + "?" + q.Encode()
}
