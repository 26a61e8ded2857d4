package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"bookloft/model"
	rentalrepo "bookloft/repository/rental"
	striperepo "bookloft/repository/stripe"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidBook       ErrCode = "INVALID_BOOK"
	ErrInvalidPrice      ErrCode = "INVALID_PRICE"
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrAlreadyPaid       ErrCode = "ALREADY_PAID"
	ErrNoFineDue         ErrCode = "NO_FINE_DUE"
	ErrIncompleteSession ErrCode = "INCOMPLETE_SESSION"
	ErrInvalidSignature  ErrCode = "INVALID_SIGNATURE"
	ErrUpstream          ErrCode = "UPSTREAM_ERROR"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return string(e.code) + ": " + e.cause.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error              { return codedError{code: c} }
func wrapErr(c ErrCode, cause error) error { return codedError{code: c, cause: cause} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// checkout metadata keys; they round-trip through Stripe as opaque strings
const (
	metaKind     = "kind"
	metaUserID   = "user_id"
	metaBookID   = "book_id"
	metaRentalID = "rental_id"

	kindRental = "rental"
	kindFine   = "fine"
)

type CheckoutCreated struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type BookStore interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type Store interface {
	CreateBorrow(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error)
	Get(ctx context.Context, rentalID int64) (*model.Rental, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Rental, error)
	SettleFine(ctx context.Context, rentalID int64) (bool, error)
}

// Checkout carries the redirect targets and rental policy the reconciler
// stamps onto new rentals.
type Checkout struct {
	SuccessURL   string
	CancelURL    string
	Currency     string
	RentalPeriod time.Duration
}

type Service interface {
	// CreateRentalCheckout builds a provider checkout for borrowing a book.
	CreateRentalCheckout(ctx context.Context, userID, bookID int64) (*CheckoutCreated, error)

	// CreateFineCheckout builds a provider checkout for an outstanding fine.
	CreateFineCheckout(ctx context.Context, userID, rentalID int64) (*CheckoutCreated, error)

	// VerifyCheckout re-reads a session from the provider and reconciles it.
	// Safe to call any number of times for the same session.
	VerifyCheckout(ctx context.Context, sessionID string) (*model.Rental, error)

	// HandleWebhook is the authoritative reconciliation path: it verifies
	// the signature and applies completed checkout sessions.
	HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error
}

// ----- Service implementation -----

type service struct {
	stripe  striperepo.Repo
	books   BookStore
	rentals Store
	co      Checkout
	now     func() time.Time
}

func New(stripe striperepo.Repo, books BookStore, rentals Store, co Checkout) Service {
	return &service{stripe: stripe, books: books, rentals: rentals, co: co, now: time.Now}
}

func (s *service) CreateRentalCheckout(ctx context.Context, userID, bookID int64) (*CheckoutCreated, error) {
	b, err := s.books.Detail(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidBook)
		}
		return nil, err
	}
	if b.Price <= 0 {
		return nil, makeErr(ErrInvalidPrice)
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, striperepo.CreateSessionReq{
		AmountCents: toCents(b.Price),
		Currency:    s.co.Currency,
		Description: fmt.Sprintf("Rental: %s", b.Title),
		Metadata: map[string]string{
			metaKind:   kindRental,
			metaUserID: strconv.FormatInt(userID, 10),
			metaBookID: strconv.FormatInt(bookID, 10),
		},
		SuccessURL: s.co.SuccessURL,
		CancelURL:  s.co.CancelURL,
	})
	if err != nil {
		return nil, wrapErr(ErrUpstream, err)
	}
	return &CheckoutCreated{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

func (s *service) CreateFineCheckout(ctx context.Context, userID, rentalID int64) (*CheckoutCreated, error) {
	rn, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rn.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	if rn.FinePaid {
		return nil, makeErr(ErrAlreadyPaid)
	}
	if rn.FineAmount <= 0 {
		return nil, makeErr(ErrNoFineDue)
	}

	sess, err := s.stripe.CreateCheckoutSession(ctx, striperepo.CreateSessionReq{
		AmountCents: toCents(rn.FineAmount),
		Currency:    s.co.Currency,
		Description: fmt.Sprintf("Late fine, rental #%d", rentalID),
		Metadata: map[string]string{
			metaKind:     kindFine,
			metaUserID:   strconv.FormatInt(userID, 10),
			metaRentalID: strconv.FormatInt(rentalID, 10),
		},
		SuccessURL: s.co.SuccessURL,
		CancelURL:  s.co.CancelURL,
	})
	if err != nil {
		return nil, wrapErr(ErrUpstream, err)
	}
	return &CheckoutCreated{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

func (s *service) VerifyCheckout(ctx context.Context, sessionID string) (*model.Rental, error) {
	sess, err := s.stripe.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, wrapErr(ErrUpstream, err)
	}
	return s.reconcile(ctx, sess)
}

// webhookEvent is the slice of a Stripe event envelope this service reads.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			Status        string            `json:"status"`
			PaymentStatus string            `json:"payment_status"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (s *service) HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.stripe.VerifyWebhookSignature(sigHeader, raw); err != nil {
		return wrapErr(ErrInvalidSignature, err)
	}

	var ev webhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.Type != "checkout.session.completed" {
		// Not ours; acknowledge so the provider stops retrying.
		return nil
	}

	_, err := s.reconcile(ctx, &striperepo.Session{
		ID:            ev.Data.Object.ID,
		Status:        ev.Data.Object.Status,
		PaymentStatus: ev.Data.Object.PaymentStatus,
		Metadata:      ev.Data.Object.Metadata,
	})
	return err
}

// reconcile turns a paid checkout session into durable state exactly once.
func (s *service) reconcile(ctx context.Context, sess *striperepo.Session) (*model.Rental, error) {
	if sess.ID == "" || sess.PaymentStatus != "paid" {
		return nil, makeErr(ErrIncompleteSession)
	}

	if sess.Metadata[metaKind] == kindFine {
		return s.reconcileFine(ctx, sess)
	}
	return s.reconcileRental(ctx, sess)
}

func (s *service) reconcileRental(ctx context.Context, sess *striperepo.Session) (*model.Rental, error) {
	if existing, err := s.rentals.FindBySessionID(ctx, sess.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	userID, uerr := strconv.ParseInt(sess.Metadata[metaUserID], 10, 64)
	bookID, berr := strconv.ParseInt(sess.Metadata[metaBookID], 10, 64)
	if uerr != nil || berr != nil {
		return nil, makeErr(ErrIncompleteSession)
	}

	now := s.now().UTC()
	// The customer already paid, so stock is not a precondition here; the
	// copy count floors at zero inside CreateBorrow.
	rn, err := s.rentals.CreateBorrow(ctx, userID, bookID, &sess.ID, now, now.Add(s.co.RentalPeriod), false)
	if err != nil {
		if errors.Is(err, rentalrepo.ErrDuplicateSession) {
			// Concurrent reconciliation won; hand back its rental.
			return s.findRecorded(ctx, sess.ID)
		}
		return nil, err
	}
	return rn, nil
}

func (s *service) findRecorded(ctx context.Context, sessionID string) (*model.Rental, error) {
	rn, err := s.rentals.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rn == nil {
		return nil, fmt.Errorf("session %s claimed recorded but not found", sessionID)
	}
	return rn, nil
}

func (s *service) reconcileFine(ctx context.Context, sess *striperepo.Session) (*model.Rental, error) {
	rentalID, err := strconv.ParseInt(sess.Metadata[metaRentalID], 10, 64)
	if err != nil {
		return nil, makeErr(ErrIncompleteSession)
	}

	// SettleFine is a guarded update; settling twice is a no-op.
	if _, err := s.rentals.SettleFine(ctx, rentalID); err != nil {
		return nil, err
	}
	rn, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return rn, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
