package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// CustomerResolver finds or creates the payment customer of a user.
type CustomerResolver struct {
	log      logrus.FieldLogger
	db       *sqlx.DB
	payments Payments
}

func NewCustomerResolver(log logrus.FieldLogger, db *sqlx.DB, payments Payments) *CustomerResolver {
	return &CustomerResolver{log: log, db: db, payments: payments}
}

// Resolve returns the stored customer id of userID, creating a customer
// with email on first use. When a concurrent call stored a mapping first,
// that mapping wins and the customer created here is left unused.
func (cr *CustomerResolver) Resolve(ctx context.Context, userID string, email string) (string, error) {
	c, err := FetchCustomer(ctx, cr.db, userID)
	switch {
	case err == nil:
		return c.CustomerID, nil
	case !errors.Is(err, database.ErrDBNotFound):
		return "", err
	}

	customerID, err := cr.payments.CreateCustomer(ctx, email)
	if err != nil {
		return "", fault.Provider(fmt.Errorf("creating customer for user[%s]: %w", userID, err))
	}

	now := time.Now().UTC()
	c = Customer{
		UserID:     userID,
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = CreateCustomer(ctx, cr.db, c)
	if errors.Is(err, database.ErrDBDuplicatedEntry) {
		cr.log.WithFields(logrus.Fields{
			"user_id":     userID,
			"customer_id": customerID,
		}).Warn("customer already mapped, discarding the new one")

		c, err = FetchCustomer(ctx, cr.db, userID)
		if err != nil {
			return "", err
		}
		return c.CustomerID, nil
	}
	if err != nil {
		return "", err
	}

	return customerID, nil
}
