package purchase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// Webhook records purchases from signed payment provider events.
type Webhook struct {
	log    logrus.FieldLogger
	db     *sqlx.DB
	secret string
}

func NewWebhook(log logrus.FieldLogger, db *sqlx.DB, secret string) *Webhook {
	return &Webhook{log: log, db: db, secret: secret}
}

// Handle verifies payload against the signature header and records the
// purchase of a completed checkout session. Other event types are
// acknowledged without effect. A redelivered event is absorbed by the
// (course, user) uniqueness of purchases.
func (wh *Webhook) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, wh.secret)
	if err != nil {
		return fault.ErrInvalidSignature.Wrap(err)
	}

	log := wh.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	if event.Type != eventCheckoutCompleted {
		log.Debug("event ignored")
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("decoding session of event[%s]: %w", event.ID, err)
	}

	courseID := sess.Metadata[MetaCourseID]
	userID := sess.Metadata[MetaUserID]
	if courseID == "" || userID == "" {
		return fmt.Errorf("session[%s] is missing course or user metadata", sess.ID)
	}

	now := time.Now().UTC()
	p := Purchase{
		ID:        validate.GenerateID(),
		CourseID:  courseID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if sess.ID != "" {
		p.SessionID = &sess.ID
	}

	created, err := Create(ctx, wh.db, p)
	if err != nil {
		return fmt.Errorf("recording purchase of session[%s]: %w", sess.ID, err)
	}

	log = log.WithFields(logrus.Fields{
		"course_id":  courseID,
		"user_id":    userID,
		"session_id": sess.ID,
	})
	if !created {
		log.Info("purchase already recorded")
		return nil
	}

	log.Info("purchase recorded")
	return nil
}
