package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookloft/model"
	rentalrepo "bookloft/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrOutOfStock      ErrCode = "OUT_OF_STOCK"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrAlreadyPaid     ErrCode = "ALREADY_PAID"
	ErrNoFineDue       ErrCode = "NO_FINE_DUE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// HistoryRow = repository shape
type HistoryRow = rentalrepo.HistoryRow

type BookStore interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type Store interface {
	CreateBorrow(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error)
	Get(ctx context.Context, rentalID int64) (*model.Rental, error)
	FinishReturn(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error)
	Extend(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error)
	FlagOverdue(ctx context.Context, now time.Time) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
}

// Policy is the injected rental configuration.
type Policy struct {
	FinePerDay float64
	Period     time.Duration
}

type Service interface {
	// Borrow creates a borrowed rental and takes one copy of the book.
	Borrow(ctx context.Context, userID, bookID int64) (*model.Rental, error)

	// Return closes the rental, charging a fine when it comes back late.
	Return(ctx context.Context, userID, rentalID int64) (*model.Rental, error)

	// Extend pushes the due date out by n days.
	Extend(ctx context.Context, userID, rentalID int64, days int) (*model.Rental, error)

	// MyRentals lists rentals for a user, newest first.
	MyRentals(ctx context.Context, userID int64) ([]HistoryRow, error)

	// SweepOverdue flags every borrowed rental past its due date.
	SweepOverdue(ctx context.Context) (int64, error)
}

// ----- Service implementation -----

type service struct {
	books   BookStore
	rentals Store
	policy  Policy
	now     func() time.Time
}

func New(books BookStore, rentals Store, policy Policy) Service {
	return &service{books: books, rentals: rentals, policy: policy, now: time.Now}
}

func (s *service) Borrow(ctx context.Context, userID, bookID int64) (*model.Rental, error) {
	if _, err := s.books.Detail(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	now := s.now().UTC()
	rn, err := s.rentals.CreateBorrow(ctx, userID, bookID, nil, now, now.Add(s.policy.Period), true)
	if err != nil {
		if errors.Is(err, rentalrepo.ErrOutOfStock) {
			return nil, makeErr(ErrOutOfStock)
		}
		return nil, err
	}
	return rn, nil
}

func (s *service) Return(ctx context.Context, userID, rentalID int64) (*model.Rental, error) {
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
	if rn.Status == model.RentalReturned {
		return nil, makeErr(ErrAlreadyReturned)
	}

	now := s.now().UTC()
	overdue := now.After(rn.DueDate)
	fine := FineFor(rn.DueDate, now, s.policy.FinePerDay)

	out, err := s.rentals.FinishReturn(ctx, rentalID, now, overdue, fine)
	if err != nil {
		// Lost the race against a concurrent return.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrAlreadyReturned)
		}
		return nil, err
	}
	return out, nil
}

func (s *service) Extend(ctx context.Context, userID, rentalID int64, days int) (*model.Rental, error) {
	if days <= 0 {
		return nil, errors.New("days must be > 0")
	}
	rn, err := s.rentals.Extend(ctx, rentalID, userID, days)
	if err == nil {
		return rn, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// The guarded update missed; find out why.
	cur, gerr := s.rentals.Get(ctx, rentalID)
	switch {
	case errors.Is(gerr, sql.ErrNoRows):
		return nil, makeErr(ErrNotFound)
	case gerr != nil:
		return nil, gerr
	case cur.UserID != userID:
		return nil, makeErr(ErrNotOwner)
	default:
		return nil, makeErr(ErrAlreadyReturned)
	}
}

func (s *service) MyRentals(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return s.rentals.ListByUser(ctx, userID)
}

func (s *service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.rentals.FlagOverdue(ctx, s.now().UTC())
}
