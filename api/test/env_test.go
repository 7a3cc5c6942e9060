package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-platform/api"
	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/core/auth"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/publish"
	"github.com/irsalhamdi/course-platform/core/purchase"
	"github.com/irsalhamdi/course-platform/core/video"
	"github.com/irsalhamdi/course-platform/core/video/videotest"
	"github.com/irsalhamdi/course-platform/database/dbtest"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	mock "github.com/stripe/stripe-mock/param"
)

const (
	adminToken    = "admin"
	userToken     = "user-1"
	otherToken    = "user-2"
	webhookSecret = "whsec_test"
)

// headerIdentity treats the bearer token as the user id.
type headerIdentity struct{}

func (headerIdentity) Resolve(ctx context.Context, r *http.Request) (claims.Claims, error) {
	tok := auth.Token(r)
	if tok == "" {
		return claims.Claims{}, auth.ErrNoToken
	}
	return claims.Claims{UserID: tok, Email: tok + "@test.com"}, nil
}

// mockStripe answers the customer and checkout session endpoints and keeps
// the decoded form of every session request.
type mockStripe struct {
	mu        sync.Mutex
	customers int
	sessions  []map[string]any
}

func (m *mockStripe) handle() http.Handler {
	customers := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil || params["email"] == nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.customers++
		m.mu.Unlock()

		c := map[string]any{"id": "cus_" + params["email"].(string), "object": "customer"}
		web.Respond(context.Background(), w, c, http.StatusOK)
	})

	sessions := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil || params["customer"] == nil || params["line_items"] == nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.sessions = append(m.sessions, params)
		id := "cs_test_" + time.Now().Format("150405.000000")
		m.mu.Unlock()

		s := map[string]any{"id": id, "object": "checkout.session", "url": "https://checkout.test/" + id}
		web.Respond(context.Background(), w, s, http.StatusOK)
	})

	r := mux.NewRouter()
	r.Handle("/v1/customers", customers).Methods(http.MethodPost)
	r.Handle("/v1/checkout/sessions", sessions).Methods(http.MethodPost)
	return r
}

func (m *mockStripe) customerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers
}

func (m *mockStripe) lastSession() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) == 0 {
		return nil
	}
	return m.sessions[len(m.sessions)-1]
}

type TestEnv struct {
	*httptest.Server
	DB     *sqlx.DB
	Video  *videotest.Provider
	Stripe *mockStripe
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db := dbtest.New(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	ms := &mockStripe{}
	stripeSrv := httptest.NewServer(ms.handle())
	t.Cleanup(stripeSrv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(stripeSrv.URL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	strp := &stripecl.API{}
	strp.Init("sk_test_key", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	vp := &videotest.Provider{}
	coord := video.NewCoordinator(log, db, vp)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := api.APIMux(api.APIConfig{
		Log:         log,
		DB:          db,
		Gate:        auth.NewGate(headerIdentity{}, adminToken),
		Coordinator: coord,
		Publisher:   publish.NewService(log, db, coord),
		Checkout: purchase.NewCheckout(log, db, purchase.NewStripe(strp), purchase.CheckoutConfig{
			Currency:        "jpy",
			RedirectBaseURL: "https://courses.test",
		}),
		Webhook: purchase.NewWebhook(log, db, webhookSecret),
		Limiter: rate.NewLimiter(ctx, 100, time.Millisecond, time.Minute),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, DB: db, Video: vp, Stripe: ms}
}

// do sends body as JSON with token as bearer, when set, and returns the
// status code. A non-nil out receives the decoded response.
func (env *TestEnv) do(t *testing.T, method string, path string, token string, body any, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding response of %s %s: %v", method, path, err)
		}
	}
	return w.StatusCode
}

func (env *TestEnv) expect(t *testing.T, exp int, method string, path string, token string, body any, out any) {
	t.Helper()

	if got := env.do(t, method, path, token, body, out); got != exp {
		t.Fatalf("%s %s: expected status %d, got %d", method, path, exp, got)
	}
}
