package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Astrape/internal/auth"
	"Astrape/pkg/kit"
)

type httpEnv struct {
	h       http.Handler
	token   string
	metrics *Metrics
}

func newHTTPEnv(t *testing.T, catalog Catalog) httpEnv {
	t.Helper()

	tokens := auth.NewTokenMaker("test-secret", time.Minute)
	token, err := tokens.New(auth.User{ID: "u_1", Role: auth.RoleUser})
	require.NoError(t, err)

	m := NewMetrics(prometheus.NewRegistry())
	svc := &Service{Store: NewMemStore(), Catalog: catalog, Events: NopPublisher{}, Log: zap.NewNop(), Metrics: m}
	s := &Server{Cart: svc, Log: zap.NewNop()}

	return httpEnv{
		h:       NewHandler(s, tokens, kit.HTTPDeps{Log: zap.NewNop(), Service: "cart"}),
		token:   token,
		metrics: m,
	}
}

func (e httpEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) Cart {
	t.Helper()
	var c Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) kit.ErrorResponse {
	t.Helper()
	var e kit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestCartHTTP_Flow(t *testing.T) {
	t.Parallel()

	env := newHTTPEnv(t, testCatalog())

	rec := env.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, string(mustField(t, rec, "items")))

	rec = env.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decodeCart(t, rec)
	assert.Equal(t, "u_1", c.UserID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Headphones", c.Items[0].Name)

	rec = env.do(t, http.MethodPost, "/cart/add", map[string]any{"productId": "A", "quantity": "3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, decodeCart(t, rec).Items[0].Quantity)

	rec = env.do(t, http.MethodPut, "/cart/items/A", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeCart(t, rec).Items[0].Quantity)

	rec = env.do(t, http.MethodPut, "/cart/update/A", map[string]any{"quantity": "4"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 4, decodeCart(t, rec).Items[0].Quantity)

	rec = env.do(t, http.MethodDelete, "/cart/remove/B", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeCart(t, rec).Items, 1)

	rec = env.do(t, http.MethodDelete, "/cart/items/A", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeCart(t, rec).Items)

	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.Mutations.WithLabelValues("add", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.Mutations.WithLabelValues("remove", "ok")))
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	v, ok := m[name]
	require.True(t, ok, "missing field %q in %s", name, rec.Body.String())
	return v
}

func TestCartHTTP_Errors(t *testing.T) {
	t.Parallel()

	env := newHTTPEnv(t, testCatalog())

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		msg    string
	}{
		{"update without cart", http.MethodPut, "/cart/items/A", map[string]any{"quantity": 1}, http.StatusNotFound, "cart not found"},
		{"remove without cart", http.MethodDelete, "/cart/items/A", nil, http.StatusNotFound, "cart not found"},
		{"zero quantity", http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 0}, http.StatusBadRequest, "invalid quantity"},
		{"text quantity", http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": "abc"}, http.StatusBadRequest, "invalid quantity"},
		{"fractional quantity", http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 1.5}, http.StatusBadRequest, "invalid quantity"},
		{"missing quantity", http.MethodPost, "/cart/items", map[string]any{"productId": "A"}, http.StatusBadRequest, "invalid quantity"},
		{"missing product id", http.MethodPost, "/cart/items", map[string]any{"quantity": 1}, http.StatusNotFound, "product not found"},
		{"empty product id", http.MethodPost, "/cart/add", map[string]any{"productId": "", "quantity": 1}, http.StatusNotFound, "product not found"},
		{"quantity checked before product", http.MethodPost, "/cart/add", map[string]any{"quantity": 0}, http.StatusBadRequest, "invalid quantity"},
		{"text quantity without product", http.MethodPost, "/cart/add", map[string]any{"productId": "", "quantity": "abc"}, http.StatusBadRequest, "invalid quantity"},
		{"unknown product", http.MethodPost, "/cart/items", map[string]any{"productId": "zzz", "quantity": 1}, http.StatusNotFound, "product not found"},
		{"unknown field", http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 1, "x": 1}, http.StatusBadRequest, "bad json"},
	}

	for _, tc := range cases {
		rec := env.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.status, rec.Code, "%s: %s", tc.name, rec.Body.String())
		assert.Equal(t, tc.msg, decodeErr(t, rec).Error, tc.name)
	}

	rec := env.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items, "failed mutations must not create a cart")

	rec = env.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPut, "/cart/items/B", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found in cart", decodeErr(t, rec).Error)
}

func TestCartHTTP_RequiresToken(t *testing.T) {
	t.Parallel()

	env := newHTTPEnv(t, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"A","quantity":1}`))
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	env.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type downCatalog struct{ err error }

func (d downCatalog) GetProduct(context.Context, string) (CatalogProduct, error) {
	return CatalogProduct{}, d.err
}

func TestCartHTTP_CatalogFailures(t *testing.T) {
	t.Parallel()

	rec := newHTTPEnv(t, downCatalog{err: ErrCatalogUnavailable}).
		do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = newHTTPEnv(t, downCatalog{err: ErrCatalogUpstream}).
		do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "A", "quantity": 1})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
