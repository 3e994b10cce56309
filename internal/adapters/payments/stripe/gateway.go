package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/velez/storefront/internal/domain"
)

const defaultAPIBase = "https://api.stripe.com"

type Gateway struct {
	secretKey  string
	apiBase    string
	httpClient *http.Client
}

func NewGateway(secretKey string) *Gateway {
	base := os.Getenv("STRIPE_API_BASE")
	if base == "" {
		base = defaultAPIBase
	}
	return &Gateway{
		secretKey:  secretKey,
		apiBase:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sessionResp struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type errorResp struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// CreateSession opens a hosted checkout session for the given lines and
// returns it with the redirect URL filled in. Metadata is echoed back
// verbatim when the session is later retrieved.
func (g *Gateway) CreateSession(ctx context.Context, lines []domain.CheckoutLine, metadata map[string]string) (*domain.CheckoutSession, error) {
	if g.secretKey == "" {
		return nil, errors.New("stripe secret key missing (STRIPE_SECRET_KEY)")
	}
	if len(lines) == 0 {
		return nil, errors.New("no line items")
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	currency := strings.ToLower(os.Getenv("STRIPE_CURRENCY"))
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", baseURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}&basket_id="+url.QueryEscape(metadata["basket_id"]))
	form.Set("cancel_url", baseURL+"/checkout/cancel?basket_id="+url.QueryEscape(metadata["basket_id"]))
	for i, ln := range lines {
		p := fmt.Sprintf("line_items[%d]", i)
		form.Set(p+"[quantity]", strconv.Itoa(ln.Quantity))
		form.Set(p+"[price_data][currency]", currency)
		form.Set(p+"[price_data][unit_amount]", strconv.FormatInt(ln.UnitAmount, 10))
		form.Set(p+"[price_data][product_data][name]", ln.Title)
		if ln.Description != "" {
			form.Set(p+"[price_data][product_data][description]", ln.Description)
		}
	}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	resp, err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.URL == "" {
		return nil, errors.New("incomplete stripe response")
	}
	return &domain.CheckoutSession{ID: resp.ID, URL: resp.URL, PaymentStatus: resp.PaymentStatus, Metadata: resp.Metadata}, nil
}

func (g *Gateway) GetSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	if g.secretKey == "" || id == "" {
		return nil, errors.New("params")
	}
	resp, err := g.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &domain.CheckoutSession{ID: resp.ID, URL: resp.URL, PaymentStatus: resp.PaymentStatus, Metadata: resp.Metadata}, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader) (*sessionResp, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.apiBase+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe connection error: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		var er errorResp
		if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
			if res.StatusCode == 401 || res.StatusCode == 403 {
				return nil, fmt.Errorf("stripe credentials rejected (status %d): %s", res.StatusCode, er.Error.Message)
			}
			return nil, fmt.Errorf("stripe error (status %d): %s", res.StatusCode, er.Error.Message)
		}
		return nil, fmt.Errorf("stripe status %d: %s", res.StatusCode, string(raw))
	}
	var sr sessionResp
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, err
	}
	return &sr, nil
}
