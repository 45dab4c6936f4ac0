package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/internal/storage"
)

type harness struct {
	st      *storage.Memory
	cart    *cart.Store
	session *session.Session
	svc     *Service
	calls   *atomic.Int32
	expired *atomic.Int32
}

func newHarness(t *testing.T, baseURL string, calls *atomic.Int32) *harness {
	t.Helper()
	ctx := context.Background()
	st := storage.NewMemory()
	sess := session.New(st, nil)
	store := cart.New(st, nil)

	expired := &atomic.Int32{}
	sess.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventExpired {
			expired.Add(1)
		}
	})

	client, err := api.NewClient(baseURL, api.Options{
		Credentials: sess,
		OnUnauthorized: func(ctx context.Context) {
			_ = sess.Expire(ctx)
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := store.AddOrIncrement(ctx, domain.Product{ID: 1, Title: "Mug", Price: decimal.RequireFromString("12.50")}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := store.AddOrIncrement(ctx, domain.Product{ID: 2, Title: "Tea", Price: decimal.RequireFromString("0.50")}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return &harness{
		st:      st,
		cart:    store,
		session: sess,
		svc:     New(store, api.NewOrderClient(client), sess, nil),
		calls:   calls,
		expired: expired,
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if err := h.session.Begin(context.Background(), domain.Session{Access: "tok", Username: "ann"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
}

func (h *harness) rawCart(t *testing.T) string {
	t.Helper()
	raw, err := h.st.Get(context.Background(), cart.StorageKey)
	if err != nil {
		t.Fatalf("read cart: %v", err)
	}
	return raw
}

func orderServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestPlaceOrder_RequiresLogin(t *testing.T) {
	srv, calls := orderServer(t, http.StatusCreated, `{"id":1}`)
	h := newHarness(t, srv.URL+"/api/", calls)
	before := h.rawCart(t)

	_, err := h.svc.PlaceOrder(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
	if h.rawCart(t) != before {
		t.Fatalf("cart changed")
	}
	if Message(err) != "You must login first to place an order" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestPlaceOrder_EmptyCartMakesNoCall(t *testing.T) {
	srv, calls := orderServer(t, http.StatusCreated, `{"id":1}`)
	h := newHarness(t, srv.URL+"/api/", calls)
	h.login(t)
	if err := h.cart.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	before := h.session.Current()

	_, err := h.svc.PlaceOrder(context.Background())
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network call, got %d", calls.Load())
	}
	if after := h.session.Current(); after != before {
		t.Fatalf("session changed: before %+v after %+v", before, after)
	}
	if h.expired.Load() != 0 {
		t.Fatalf("expected no expiry event, got %d", h.expired.Load())
	}
}

func TestPlaceOrder_SuccessClearsCart(t *testing.T) {
	srv, calls := orderServer(t, http.StatusCreated, `{"id":42,"total_items":2,"total_price":"13.00"}`)
	h := newHarness(t, srv.URL+"/api/", calls)
	h.login(t)

	order, err := h.svc.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.ID != 42 {
		t.Fatalf("unexpected order %+v", order)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", calls.Load())
	}
	c, err := h.cart.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Empty() {
		t.Fatalf("expected empty cart, got %+v", c)
	}
	if _, err := h.st.Get(context.Background(), cart.StorageKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected cart record removed, got %v", err)
	}
}

func TestPlaceOrder_FailureLeavesCartUntouched(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    error
		message string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: ``, kind: api.ErrServer, message: "Failed to place order. Make sure you are logged in."},
		{name: "validation", status: http.StatusBadRequest, body: `{"items":["No valid items were provided for this order."]}`, kind: api.ErrValidation, message: "items: No valid items were provided for this order."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := orderServer(t, tc.status, tc.body)
			h := newHarness(t, srv.URL+"/api/", calls)
			h.login(t)
			before := h.rawCart(t)

			_, err := h.svc.PlaceOrder(context.Background())
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if got := h.rawCart(t); got != before {
				t.Fatalf("cart changed:\nbefore %s\nafter  %s", before, got)
			}
			if got := Message(err); got != tc.message {
				t.Fatalf("unexpected message %q", got)
			}
			if !h.session.Authenticated() {
				t.Fatalf("session should survive a non-auth failure")
			}
		})
	}
}

func TestPlaceOrder_UnauthorizedExpiresSessionOnce(t *testing.T) {
	srv, calls := orderServer(t, http.StatusUnauthorized, `{"detail":"token expired"}`)
	h := newHarness(t, srv.URL+"/api/", calls)
	h.login(t)
	before := h.rawCart(t)

	_, err := h.svc.PlaceOrder(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if h.session.Authenticated() {
		t.Fatalf("expected anonymous session")
	}
	if h.expired.Load() != 1 {
		t.Fatalf("expected one expiry event, got %d", h.expired.Load())
	}
	if h.rawCart(t) != before {
		t.Fatalf("cart changed")
	}
	if Message(err) != "Session expired. Please login again" {
		t.Fatalf("unexpected message %q", Message(err))
	}

	// A second attempt is refused locally and does not expire again.
	if _, err := h.svc.PlaceOrder(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if h.expired.Load() != 1 || calls.Load() != 1 {
		t.Fatalf("expected no further effects, expired=%d calls=%d", h.expired.Load(), calls.Load())
	}
}

func TestPlaceOrder_UnreachableLeavesCart(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api/"
	srv.Close()

	h := newHarness(t, base, &atomic.Int32{})
	h.login(t)
	before := h.rawCart(t)

	_, err := h.svc.PlaceOrder(context.Background())
	if !errors.Is(err, api.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if h.rawCart(t) != before {
		t.Fatalf("cart changed")
	}
	if !h.session.Authenticated() {
		t.Fatalf("session should survive a transport failure")
	}
}

func TestDeleteOrder_RespectsConfirmer(t *testing.T) {
	srv, calls := orderServer(t, http.StatusNoContent, ``)
	h := newHarness(t, srv.URL+"/api/", calls)
	h.login(t)

	var prompt string
	deleted, err := h.svc.DeleteOrder(context.Background(), 5, func(p string) bool { prompt = p; return false })
	if err != nil || deleted {
		t.Fatalf("expected declined delete, got deleted=%v err=%v", deleted, err)
	}
	if prompt != DeletePrompt {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if calls.Load() != 0 {
		t.Fatalf("declined delete must not call the server")
	}

	deleted, err = h.svc.DeleteOrder(context.Background(), 5, func(string) bool { return true })
	if err != nil || !deleted {
		t.Fatalf("expected delete, got deleted=%v err=%v", deleted, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
}

func TestOrders_RequiresLogin(t *testing.T) {
	srv, calls := orderServer(t, http.StatusOK, `[]`)
	h := newHarness(t, srv.URL+"/api/", calls)

	if _, err := h.svc.Orders(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	h.login(t)
	orders, err := h.svc.Orders(context.Background())
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}
