package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
)

func Exists(ctx context.Context, db sqlx.ExtContext, courseID string, userID string) (bool, error) {
	in := struct {
		CourseID string `db:"course_id"`
		UserID   string `db:"user_id"`
	}{
		CourseID: courseID,
		UserID:   userID,
	}

	const q = `
	SELECT EXISTS (
		SELECT 1 FROM purchases
		WHERE course_id = :course_id AND user_id = :user_id
	) AS found`

	var out struct {
		Found bool `db:"found"`
	}
	if err := database.NamedQueryStruct(ctx, db, q, in, &out); err != nil {
		return false, fmt.Errorf("selecting purchase of course[%s] by user[%s]: %w", courseID, userID, err)
	}
	return out.Found, nil
}

// Create inserts p unless the user already owns the course. It reports
// whether a row was written.
func Create(ctx context.Context, db sqlx.ExtContext, p Purchase) (bool, error) {
	const q = `
	INSERT INTO purchases
		(purchase_id, course_id, user_id, session_id, created_at, updated_at)
	VALUES
		(:purchase_id, :course_id, :user_id, :session_id, :created_at, :updated_at)
	ON CONFLICT (course_id, user_id) DO NOTHING`

	n, err := database.NamedExecContextRows(ctx, db, q, p)
	if err != nil {
		return false, fmt.Errorf("inserting purchase: %w", err)
	}
	return n == 1, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Purchase, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	SELECT
		purchase_id, course_id, user_id, session_id, created_at, updated_at
	FROM
		purchases
	WHERE
		user_id = :user_id
	ORDER BY
		created_at`

	var ps []Purchase
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, fmt.Errorf("selecting purchases of user[%s]: %w", userID, err)
	}
	return ps, nil
}

// FetchCustomer wraps database.ErrDBNotFound when the user has no customer.
func FetchCustomer(ctx context.Context, db sqlx.ExtContext, userID string) (Customer, error) {
	in := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	SELECT
		user_id, customer_id, created_at, updated_at
	FROM
		payment_customers
	WHERE
		user_id = :user_id`

	var c Customer
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Customer{}, fmt.Errorf("selecting customer of user[%s]: %w", userID, err)
	}
	return c, nil
}

// CreateCustomer returns database.ErrDBDuplicatedEntry when the user already
// has a customer.
func CreateCustomer(ctx context.Context, db sqlx.ExtContext, c Customer) error {
	const q = `
	INSERT INTO payment_customers
		(user_id, customer_id, created_at, updated_at)
	VALUES
		(:user_id, :customer_id, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return database.ErrDBDuplicatedEntry
		}
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}
