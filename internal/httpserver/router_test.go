package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	ordersvc "storefront/internal/service/order"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubAuthService struct {
	user     *domain.User
	regErr   error
	loginErr error
	tokens   map[string]*authsvc.Claims
}

func (s *stubAuthService) Register(_ context.Context, in authsvc.RegisterInput) (*domain.User, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return &domain.User{ID: 7, Username: in.Username, Email: in.Email, Role: domain.ParseRole(in.UserType)}, nil
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*domain.User, string, string, error) {
	if s.loginErr != nil {
		return nil, "", "", s.loginErr
	}
	return s.user, "access-token", "refresh-token", nil
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*authsvc.Claims, error) {
	if c, ok := s.tokens[token]; ok {
		return c, nil
	}
	return nil, authsvc.ErrInvalidToken
}

type stubProductService struct {
	products   []domain.Product
	err        error
	lastSearch string
	lastOrder  string
	lastSeller int64
	lastInput  domain.ProductInput
}

func (s *stubProductService) List(_ context.Context, search, ordering string) ([]domain.Product, error) {
	s.lastSearch, s.lastOrder = search, ordering
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductService) ListBySeller(_ context.Context, sellerID int64) ([]domain.Product, error) {
	s.lastSeller = sellerID
	return s.products, s.err
}

func (s *stubProductService) Create(_ context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error) {
	s.lastSeller, s.lastInput = sellerID, in
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &domain.Product{ID: 99, Seller: sellerID, Title: in.Title, Price: in.Price, Stock: in.Stock}, nil
}

func (s *stubProductService) Update(_ context.Context, sellerID, id int64, in domain.ProductInput) (*domain.Product, error) {
	s.lastSeller, s.lastInput = sellerID, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: id, Seller: sellerID, Title: in.Title, Price: in.Price}, nil
}

func (s *stubProductService) Delete(_ context.Context, sellerID, _ int64) error {
	s.lastSeller = sellerID
	return s.err
}

type stubOrderService struct {
	orders    []domain.Order
	err       error
	lastUser  int64
	lastItems []ordersvc.ItemInput
	deleted   []int64
}

func (s *stubOrderService) Create(_ context.Context, userID int64, items []ordersvc.ItemInput) (*domain.Order, error) {
	s.lastUser, s.lastItems = userID, items
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: 1, TotalItems: len(items), TotalPrice: decimal.RequireFromString("10.00")}, nil
}

func (s *stubOrderService) List(_ context.Context, userID int64) ([]domain.Order, error) {
	s.lastUser = userID
	return s.orders, s.err
}

func (s *stubOrderService) Delete(_ context.Context, userID, orderID int64) error {
	s.lastUser = userID
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, orderID)
	return nil
}

func (s *stubOrderService) SalesSummary(_ context.Context, sellerID int64) (*domain.SalesSummary, error) {
	s.lastUser = sellerID
	return &domain.SalesSummary{TotalProducts: 2, TotalOrders: 1}, s.err
}

func (s *stubOrderService) SalesOrders(_ context.Context, sellerID int64) ([]domain.SaleOrder, error) {
	s.lastUser = sellerID
	return nil, s.err
}

type testDeps struct {
	auth     *stubAuthService
	products *stubProductService
	orders   *stubOrderService
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth: &stubAuthService{
			user: &domain.User{ID: 3, Username: "sam", Role: domain.RoleSeller},
			tokens: map[string]*authsvc.Claims{
				"seller-token":   {UserID: 3, Username: "sam", UserType: "seller"},
				"customer-token": {UserID: 4, Username: "cara", UserType: "customer"},
			},
		},
		products: &stubProductService{},
		orders:   &stubOrderService{},
	}
}

func (d *testDeps) router(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{
		AuthSvc:    d.auth,
		ProductSvc: d.products,
		OrderSvc:   d.orders,
	}, nil)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func serve(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouter_MissingDeps(t *testing.T) {
	if _, err := buildRouter(logDiscard(), nil, Deps{}, nil); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestLoginHandler_OK(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodPost, "/api/users/login/", "", `{"username":"sam","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["access"] != "access-token" || body["refresh"] != "refresh-token" || body["user_type"] != "seller" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	d := newTestDeps()
	d.auth.loginErr = authsvc.ErrInvalidCredentials
	rec := serve(d.router(t), http.MethodPost, "/api/users/login/", "", `{"username":"sam","password":"bad"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid username or password.") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRegisterHandler_Created(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodPost, "/api/users/register/", "", `{"username":"new","email":"n@example.com","password":"longenough","user_type":"seller"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password: %s", rec.Body.String())
	}
}

func TestRegisterHandler_ValidationFieldMap(t *testing.T) {
	d := newTestDeps()
	d.auth.regErr = &domain.ValidationError{Fields: map[string]string{"username": "A user with that username already exists."}}
	rec := serve(d.router(t), http.MethodPost, "/api/users/register/", "", `{"username":"dup","password":"longenough"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["username"]) != 1 || body["username"][0] != "A user with that username already exists." {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestListProducts_PassesQuery(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodGet, "/api/products/?search=mug&ordering=-price", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
	if d.products.lastSearch != "mug" || d.products.lastOrder != "-price" {
		t.Fatalf("query not forwarded: %q %q", d.products.lastSearch, d.products.lastOrder)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodGet, "/api/products/12/", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not found.") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestGetProduct_BadID(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodGet, "/api/products/abc/", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSellerRoutes_RequireAuth(t *testing.T) {
	d := newTestDeps()
	router := d.router(t)

	if rec := serve(router, http.MethodGet, "/api/products/seller/", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/api/products/seller/", "bogus", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/api/products/seller/", "customer-token", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", rec.Code)
	}
	if rec := serve(router, http.MethodGet, "/api/products/seller/", "seller-token", ""); rec.Code != http.StatusOK {
		t.Fatalf("seller: expected 200, got %d", rec.Code)
	}
	if d.products.lastSeller != 3 {
		t.Fatalf("expected seller id 3, got %d", d.products.lastSeller)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodPost, "/api/products/seller/", "seller-token", `{"title":"","price":"0"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["title"][0] != "Title is required" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCreateProduct_Created(t *testing.T) {
	d := newTestDeps()
	body := `{"title":"Mug","description":"Blue","price":"12.50","stock":3,"discount":"0","additional_images":"[]"}`
	rec := serve(d.router(t), http.MethodPost, "/api/products/seller/", "seller-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !d.products.lastInput.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("price not decoded: %s", d.products.lastInput.Price)
	}
}

func TestUpdateProduct_Forbidden(t *testing.T) {
	d := newTestDeps()
	d.products.err = domain.ErrForbidden
	body := `{"title":"Mug","description":"Blue","price":"12.50","stock":3}`
	rec := serve(d.router(t), http.MethodPut, "/api/products/seller/5/", "seller-token", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteProduct_NoContent(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodDelete, "/api/products/seller/5/", "seller-token", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestSalesSummary(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodGet, "/api/products/seller/sales-summary/", "seller-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_products":2`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCreateOrder_ForwardsItems(t *testing.T) {
	d := newTestDeps()
	body := `{"items":[{"id":5,"title":"Mug","price":"12.50","quantity":2}]}`
	rec := serve(d.router(t), http.MethodPost, "/api/orders/", "customer-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if d.orders.lastUser != 4 || len(d.orders.lastItems) != 1 {
		t.Fatalf("unexpected call user=%d items=%d", d.orders.lastUser, len(d.orders.lastItems))
	}
	item := d.orders.lastItems[0]
	if item.ID != 5 || item.Quantity == nil || *item.Quantity != 2 {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodPost, "/api/orders/", "", `{"items":[]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if d.orders.lastItems != nil {
		t.Fatalf("service should not be called")
	}
}

func TestCreateOrder_NoValidItems(t *testing.T) {
	d := newTestDeps()
	d.orders.err = &domain.ValidationError{Fields: map[string]string{"items": ordersvc.NoValidItems}}
	rec := serve(d.router(t), http.MethodPost, "/api/orders/", "customer-token", `{"items":[{"id":1,"quantity":0}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteOrder(t *testing.T) {
	d := newTestDeps()
	router := d.router(t)
	if rec := serve(router, http.MethodDelete, "/api/orders/8/", "customer-token", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(d.orders.deleted) != 1 || d.orders.deleted[0] != 8 {
		t.Fatalf("unexpected deletes %v", d.orders.deleted)
	}

	d.orders.err = domain.ErrNotFound
	if rec := serve(router, http.MethodDelete, "/api/orders/9/", "customer-token", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUnexpectedErrorIs500(t *testing.T) {
	d := newTestDeps()
	d.orders.err = errors.New("boom")
	rec := serve(d.router(t), http.MethodGet, "/api/orders/", "customer-token", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	d := newTestDeps()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	d.router(t).ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	rec = serve(d.router(t), http.MethodGet, "/healthz", "", "")
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestReadyz_NoDB(t *testing.T) {
	d := newTestDeps()
	rec := serve(d.router(t), http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	d := newTestDeps()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, Deps{AuthSvc: d.auth, ProductSvc: d.products, OrderSvc: d.orders}, []string{"http://localhost:5173"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	req := httptest.NewRequest(http.MethodOptions, "/api/products/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
}
