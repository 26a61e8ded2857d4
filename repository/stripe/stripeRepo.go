package striperepo

import "context"

type CreateSessionReq struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
}

// Session is the slice of a Stripe Checkout Session this service reads.
type Session struct {
	ID            string
	URL           string
	Status        string // open | complete | expired
	PaymentStatus string // paid | unpaid | no_payment_required
	Metadata      map[string]string
}

type Repo interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionReq) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	VerifyWebhookSignature(sigHeader string, rawBody []byte) error
}
