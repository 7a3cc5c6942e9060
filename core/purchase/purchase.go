// Package purchase runs the paid side of the platform: mapping users to
// payment customers, opening checkout sessions and recording purchases when
// the payment provider reports a completed session.
package purchase

import (
	"context"
	"time"
)

type Purchase struct {
	ID        string    `json:"id" db:"purchase_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	UserID    string    `json:"userId" db:"user_id"`
	SessionID *string   `json:"sessionId" db:"session_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Customer maps a user to the payment provider's customer record.
type Customer struct {
	UserID     string    `db:"user_id"`
	CustomerID string    `db:"customer_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type LineItem struct {
	Name        string
	Description string
	// Amount is in the currency's smallest unit.
	Amount   int64
	Currency string
	Quantity int64
}

type Session struct {
	CustomerID string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Payments is the part of the payment provider the checkout relies on.
type Payments interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	// CreateCheckoutSession returns the hosted page url of a new session.
	CreateCheckoutSession(ctx context.Context, s Session) (string, error)
}

// Metadata keys carried by a checkout session back to the webhook.
const (
	MetaCourseID = "courseId"
	MetaUserID   = "userId"
)

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
