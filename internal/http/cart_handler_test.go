package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/cafe-cart/internal/domain"
	carthttp "github.com/nikolayk812/cafe-cart/internal/http"
	"github.com/nikolayk812/cafe-cart/internal/lookup"
	"github.com/nikolayk812/cafe-cart/internal/repository"
	"github.com/nikolayk812/cafe-cart/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupRouter(t *testing.T, svc service.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return carthttp.NewRouter(svc, zaptest.NewLogger(t))
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	svc := service.New(repository.NewMemoryCart(), lookup.NewStub(), service.Config{
		Logger: zaptest.NewLogger(t),
	})
	return setupRouter(t, svc)
}

func do(t *testing.T, r http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(carthttp.HeaderUserID, userID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCartHandler_Flow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/cart/items", "42", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/cart/items", "42", `{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[carthttp.CartItemResponse](t, w)
	assert.Equal(t, int64(1), added.ProductID)
	assert.Equal(t, "Americano", added.Name)
	assert.Equal(t, "2000", added.Price.String())
	assert.Equal(t, 2, added.Quantity)

	w = do(t, r, http.MethodGet, "/api/cart/items", "42", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		fmt.Sprintf(`[{"id":%d,"productId":1,"name":"Americano","price":2000,"quantity":2}]`, added.ID),
		w.Body.String())

	w = do(t, r, http.MethodPut, fmt.Sprintf("/api/cart/items/%d", added.ID), "42", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[carthttp.CartItemResponse](t, w).Quantity)

	w = do(t, r, http.MethodGet, "/api/cart", "42", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[carthttp.CartResponse](t, w)
	assert.Equal(t, int64(42), summary.UserID)
	assert.Equal(t, "OPEN", summary.Status)
	assert.Equal(t, 5, summary.TotalQuantity)
	assert.Equal(t, "10000", summary.TotalAmount.String())
	require.Len(t, summary.Items, 1)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", added.ID), "42", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/cart/items", "42", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCartHandler_Clear(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/cart/items", "7", `{"productId":2,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/api/cart", "7", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPost, "/api/cart/items", "7", `{"productId":2,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/cart/clear", "7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/cart", "7", "")
	summary := decode[carthttp.CartResponse](t, w)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.TotalQuantity)
	assert.Equal(t, "0", summary.TotalAmount.String())
}

func TestCartHandler_BadRequests(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		userID   string
		body     string
		wantBody string
	}{
		{
			name:     "missing user header",
			method:   http.MethodGet,
			path:     "/api/cart/items",
			wantBody: "X-USER-ID header is required",
		},
		{
			name:     "non numeric user header",
			method:   http.MethodGet,
			path:     "/api/cart/items",
			userID:   "abc",
			wantBody: "invalid X-USER-ID header",
		},
		{
			name:     "zero user header",
			method:   http.MethodGet,
			path:     "/api/cart",
			userID:   "0",
			wantBody: "invalid X-USER-ID header",
		},
		{
			name:     "malformed json",
			method:   http.MethodPost,
			path:     "/api/cart/items",
			userID:   "1",
			body:     `{"productId":`,
			wantBody: "malformed request body",
		},
		{
			name:     "missing product id",
			method:   http.MethodPost,
			path:     "/api/cart/items",
			userID:   "1",
			body:     `{"quantity":1}`,
			wantBody: "productId is required",
		},
		{
			name:     "zero quantity",
			method:   http.MethodPost,
			path:     "/api/cart/items",
			userID:   "1",
			body:     `{"productId":1,"quantity":0}`,
			wantBody: "quantity must be at least 1",
		},
		{
			name:     "quantity above max",
			method:   http.MethodPost,
			path:     "/api/cart/items",
			userID:   "1",
			body:     `{"productId":1,"quantity":2147483648}`,
			wantBody: "quantity must be at most 2147483647",
		},
		{
			name:     "update above max",
			method:   http.MethodPut,
			path:     "/api/cart/items/1",
			userID:   "1",
			body:     `{"quantity":2147483648}`,
			wantBody: "quantity must be at most 2147483647",
		},
		{
			name:     "non numeric item id",
			method:   http.MethodPut,
			path:     "/api/cart/items/x1",
			userID:   "1",
			body:     `{"quantity":1}`,
			wantBody: "invalid item id: x1",
		},
		{
			name:     "update to zero",
			method:   http.MethodPut,
			path:     "/api/cart/items/1",
			userID:   "1",
			body:     `{"quantity":0}`,
			wantBody: "quantity must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.userID, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestCartHandler_QuantityOverflow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/cart/items", "300", `{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[carthttp.CartItemResponse](t, w)

	w = do(t, r, http.MethodPost, "/api/cart/items", "300", `{"productId":1,"quantity":4294967295}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity must be at most 2147483647")

	w = do(t, r, http.MethodPost, "/api/cart/items", "300", `{"productId":1,"quantity":2147483646}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity out of range")

	w = do(t, r, http.MethodGet, "/api/cart", "300", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[carthttp.CartResponse](t, w)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, item.ID, summary.Items[0].ID)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, 2, summary.TotalQuantity)
	assert.Equal(t, "4000", summary.TotalAmount.String())

	w = do(t, r, http.MethodPost, "/api/cart/items", "300", `{"productId":1,"quantity":2147483645}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2147483647, decode[carthttp.CartItemResponse](t, w).Quantity)
}

func TestCartHandler_ForeignItem(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/cart/items", "100", `{"productId":1,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[carthttp.CartItemResponse](t, w)

	path := fmt.Sprintf("/api/cart/items/%d", item.ID)

	w = do(t, r, http.MethodPut, path, "200", `{"quantity":3}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, fmt.Sprintf("not found: cart item %d", item.ID), w.Body.String())

	w = do(t, r, http.MethodDelete, path, "200", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "product not found",
			err:        fmt.Errorf("lookup.GetSnapshot: %w: product 9", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   "not found: product 9",
		},
		{
			name:       "catalog unavailable",
			err:        fmt.Errorf("lookup.GetSnapshot: %w: product service: timeout", domain.ErrUpstreamUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "upstream unavailable: product service: timeout",
		},
		{
			name:       "cart already ordered",
			err:        fmt.Errorf("repo.LockOpenCart: %w: cart 3 is ORDERED", domain.ErrCartNotOpen),
			wantStatus: http.StatusConflict,
			wantBody:   "cart is not open: cart 3 is ORDERED",
		},
		{
			name:       "storage failure is hidden",
			err:        errors.New("repo.AddItem: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, &fakeService{err: tt.err})

			w := do(t, r, http.MethodPost, "/api/cart/items", "1", `{"productId":9,"quantity":1}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRouter_Health(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"cart-service"}`, w.Body.String())
}

func TestRouter_RequestID(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, w.Header().Get(carthttp.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(carthttp.HeaderRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(carthttp.HeaderRequestID))
}

// fakeService fails every call with err.
type fakeService struct {
	err error
}

func (f *fakeService) GetOrCreateOpenCart(context.Context, int64) (domain.Cart, error) {
	return domain.Cart{}, f.err
}

func (f *fakeService) ListItems(context.Context, int64) ([]domain.CartItemView, error) {
	return nil, f.err
}

func (f *fakeService) AddItem(context.Context, int64, service.AddItemRequest) (domain.CartItemView, error) {
	return domain.CartItemView{}, f.err
}

func (f *fakeService) UpdateQuantity(context.Context, int64, int64, service.UpdateQuantityRequest) (domain.CartItemView, error) {
	return domain.CartItemView{}, f.err
}

func (f *fakeService) RemoveItem(context.Context, int64, int64) error {
	return f.err
}

func (f *fakeService) Clear(context.Context, int64) error {
	return f.err
}
