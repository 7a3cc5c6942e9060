package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/fault"
	"github.com/irsalhamdi/course-platform/database/dbtest"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

type fakePayments struct {
	mu        sync.Mutex
	customers []string
	sessions  []Session
}

func (f *fakePayments) CreateCustomer(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.customers = append(f.customers, email)
	return "cus_" + email, nil
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, s Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, s)
	return "https://pay.test/session", nil
}

func seedCourse(t *testing.T, db *sqlx.DB, publish bool) course.Course {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	desc := "concurrency in practice"
	price := 4800

	c := course.Course{
		ID:          validate.GenerateID(),
		Title:       "Go",
		Description: &desc,
		Price:       &price,
		UserID:      "admin",
		PublishFlag: publish,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, course.Create(ctx, db, c))
	return c
}

func TestRedirectURL(t *testing.T) {
	got := redirectURL("https://courses.test", "c1", "success")
	assert.Equal(t, "https://courses.test/courses/c1?success=1", got)

	got = redirectURL("https://courses.test", "c1", "canceled")
	assert.Equal(t, "https://courses.test/courses/c1?canceled=1", got)
}

func TestLineItemKeepsSmallestUnit(t *testing.T) {
	desc := "d"
	price := 1500
	it := lineItem(course.Course{Title: "Go", Description: &desc, Price: &price}, "jpy")

	exp := LineItem{Name: "Go", Description: "d", Amount: 1500, Currency: "jpy", Quantity: 1}
	if diff := cmp.Diff(exp, it); diff != "" {
		t.Fatalf("unexpected line item (-want +got):\n%s", diff)
	}
}

func TestCheckout(t *testing.T) {
	db := dbtest.New(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	pay := &fakePayments{}
	co := NewCheckout(log, db, pay, CheckoutConfig{Currency: "jpy", RedirectBaseURL: "https://courses.test"})

	draft := seedCourse(t, db, false)
	_, err := co.Start(ctx, draft.ID, "u1", "u1@test.com")
	assert.True(t, errors.Is(err, fault.ErrCourseNotFound), "got %v", err)

	c := seedCourse(t, db, true)
	u, err := co.Start(ctx, c.ID, "u1", "u1@test.com")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/session", u)

	require.Len(t, pay.sessions, 1)
	s := pay.sessions[0]
	assert.Equal(t, "cus_u1@test.com", s.CustomerID)
	assert.Equal(t, map[string]string{MetaCourseID: c.ID, MetaUserID: "u1"}, s.Metadata)
	assert.Equal(t, "https://courses.test/courses/"+c.ID+"?success=1", s.SuccessURL)
	require.Len(t, s.Items, 1)
	assert.EqualValues(t, 4800, s.Items[0].Amount)

	ok, err := Exists(ctx, db, c.ID, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "checkout must not record a purchase")

	// A second session reuses the stored customer.
	_, err = co.Start(ctx, c.ID, "u1", "u1@test.com")
	require.NoError(t, err)
	assert.Len(t, pay.customers, 1)

	created, err := Create(ctx, db, Purchase{
		ID:        validate.GenerateID(),
		CourseID:  c.ID,
		UserID:    "u1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, created)

	_, err = co.Start(ctx, c.ID, "u1", "u1@test.com")
	assert.True(t, errors.Is(err, fault.ErrPurchaseAlreadyExists), "got %v", err)
	assert.Len(t, pay.sessions, 2)
}

func TestCustomerResolverKeepsFirstMapping(t *testing.T) {
	db := dbtest.New(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, CreateCustomer(ctx, db, Customer{UserID: "u1", CustomerID: "cus_existing", CreatedAt: now, UpdatedAt: now}))

	pay := &fakePayments{}
	cr := NewCustomerResolver(log, db, pay)

	id, err := cr.Resolve(ctx, "u1", "u1@test.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_existing", id)
	assert.Empty(t, pay.customers)

	err = CreateCustomer(ctx, db, Customer{UserID: "u1", CustomerID: "cus_other", CreatedAt: now, UpdatedAt: now})
	assert.Error(t, err)
}

// =============================================================================

const secret = "whsec_test"

func signedEvent(t *testing.T, eventType string, sess map[string]any) ([]byte, string) {
	t.Helper()

	evt := map[string]any{
		"id":          "evt_" + validate.GenerateID(),
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]any{"object": sess},
	}

	b, err := json.Marshal(evt)
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   b,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return b, signed.Header
}

func TestWebhook(t *testing.T) {
	db := dbtest.New(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	wh := NewWebhook(log, db, secret)

	c := seedCourse(t, db, true)
	sess := map[string]any{
		"id":       "cs_test_1",
		"object":   "checkout.session",
		"mode":     "payment",
		"metadata": map[string]string{MetaCourseID: c.ID, MetaUserID: "u1"},
	}

	t.Run("invalid signature", func(t *testing.T) {
		b, _ := signedEvent(t, eventCheckoutCompleted, sess)

		err := wh.Handle(ctx, b, "t=1,v1=deadbeef")
		assert.True(t, errors.Is(err, fault.ErrInvalidSignature), "got %v", err)

		ok, err := Exists(ctx, db, c.ID, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ignored type", func(t *testing.T) {
		b, sig := signedEvent(t, "customer.created", map[string]any{"id": "cus_1", "object": "customer"})
		assert.NoError(t, wh.Handle(ctx, b, sig))
	})

	t.Run("missing metadata", func(t *testing.T) {
		b, sig := signedEvent(t, eventCheckoutCompleted, map[string]any{"id": "cs_test_2", "object": "checkout.session"})
		err := wh.Handle(ctx, b, sig)
		require.Error(t, err)
		kind, _ := fault.KindOf(err)
		assert.Equal(t, fault.KindInternal, kind)
	})

	t.Run("completed twice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			b, sig := signedEvent(t, eventCheckoutCompleted, sess)
			require.NoError(t, wh.Handle(ctx, b, sig))
		}

		ps, err := ListByUser(ctx, db, "u1")
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, c.ID, ps[0].CourseID)
		require.NotNil(t, ps[0].SessionID)
		assert.Equal(t, "cs_test_1", *ps[0].SessionID)
	})
}
