package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velez/storefront/internal/domain"
)

func testGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("STRIPE_API_BASE", srv.URL)
	return NewGateway("sk_test_123")
}

func TestCreateSessionPostsForm(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example")
	var gotPath, gotAuth string
	var gotForm map[string][]string
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"id":"cs_123","url":"https://checkout.stripe.com/c/cs_123","payment_status":"unpaid","metadata":{"basket_id":"b1"}}`))
	})

	lines := []domain.CheckoutLine{
		{Title: "Mug", Description: "Enamel", UnitAmount: 1200, Quantity: 2},
		{Title: "Tote", UnitAmount: 1850, Quantity: 1},
	}
	sess, err := g.CreateSession(context.Background(), lines, map[string]string{"basket_id": "b1", "user_id": "u1"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/checkout/sessions", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "https://shop.example/checkout/success?session_id={CHECKOUT_SESSION_ID}&basket_id=b1", gotForm["success_url"][0])
	assert.Equal(t, "https://shop.example/checkout/cancel?basket_id=b1", gotForm["cancel_url"][0])
	assert.Equal(t, "2", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "1200", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "Mug", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "Enamel", gotForm["line_items[0][price_data][product_data][description]"][0])
	assert.NotContains(t, gotForm, "line_items[1][price_data][product_data][description]")
	assert.Equal(t, "b1", gotForm["metadata[basket_id]"][0])
	assert.Equal(t, "u1", gotForm["metadata[user_id]"][0])

	assert.Equal(t, "cs_123", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_123", sess.URL)
	assert.Equal(t, "unpaid", sess.PaymentStatus)
	assert.Equal(t, "b1", sess.Metadata["basket_id"])
}

func TestCreateSessionRequiresKeyAndLines(t *testing.T) {
	g := NewGateway("")
	_, err := g.CreateSession(context.Background(), []domain.CheckoutLine{{Title: "x", UnitAmount: 1, Quantity: 1}}, nil)
	assert.Error(t, err)

	g = NewGateway("sk_test_123")
	_, err = g.CreateSession(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestGetSessionDecodesPayload(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
		w.Write([]byte(`{"id":"cs_123","url":"https://checkout.stripe.com/c/cs_123","payment_status":"paid","metadata":{"basket_id":"b1","user_id":"u1"}}`))
	})

	sess, err := g.GetSession(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, "paid", sess.PaymentStatus)
	assert.Equal(t, "b1", sess.Metadata["basket_id"])
}

func TestErrorResponsesAreSurfaced(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key provided","type":"invalid_request_error"}}`))
	})

	_, err := g.GetSession(context.Background(), "cs_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials rejected")
	assert.Contains(t, err.Error(), "Invalid API Key provided")
}

func TestNonJSONErrorBody(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := g.GetSession(context.Background(), "cs_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
