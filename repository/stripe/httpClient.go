package striperepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookloft/util/httpx"
)

const apiBase = "https://api.stripe.com/v1"

type httpRepo struct {
	apiKey        string
	webhookSecret string
	client        *http.Client
	baseURL       string
}

func NewHTTP(apiKey, webhookSecret string) Repo {
	return &httpRepo{
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		client:        httpx.Client(),
		baseURL:       apiBase,
	}
}

type sessionPayload struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

func (p *sessionPayload) toSession() *Session {
	return &Session{
		ID:            p.ID,
		URL:           p.URL,
		Status:        p.Status,
		PaymentStatus: p.PaymentStatus,
		Metadata:      p.Metadata,
	}
}

func (r *httpRepo) CreateCheckoutSession(ctx context.Context, req CreateSessionReq) (*Session, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return r.doSession(httpReq)
}

func (r *httpRepo) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.New("stripe: empty session id")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	return r.doSession(httpReq)
}

func (r *httpRepo) doSession(req *http.Request) (*Session, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("stripe: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var p sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, errors.New("stripe: empty session id in response")
	}
	return p.toSession(), nil
}
