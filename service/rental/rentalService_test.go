package rental

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bookloft/model"
	rentalrepo "bookloft/repository/rental"

	"github.com/stretchr/testify/require"
)

type bookMock struct {
	detailFn func(ctx context.Context, id int64) (*model.Book, error)
}

func (m *bookMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}

type storeMock struct {
	createFn func(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error)
	getFn    func(ctx context.Context, rentalID int64) (*model.Rental, error)
	finishFn func(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error)
	extendFn func(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error)
	flagFn   func(ctx context.Context, now time.Time) (int64, error)
	listFn   func(ctx context.Context, userID int64) ([]HistoryRow, error)
	finishes int
}

func (m *storeMock) CreateBorrow(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error) {
	return m.createFn(ctx, userID, bookID, sessionID, borrowedAt, due, requireStock)
}
func (m *storeMock) Get(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return m.getFn(ctx, rentalID)
}
func (m *storeMock) FinishReturn(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error) {
	m.finishes++
	return m.finishFn(ctx, rentalID, returnedAt, overdue, fineAmount)
}
func (m *storeMock) Extend(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error) {
	return m.extendFn(ctx, rentalID, userID, days)
}
func (m *storeMock) FlagOverdue(ctx context.Context, now time.Time) (int64, error) {
	return m.flagFn(ctx, now)
}
func (m *storeMock) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return m.listFn(ctx, userID)
}

var testPolicy = Policy{FinePerDay: 1.5, Period: 30 * 24 * time.Hour}

func newTestService(books BookStore, rentals Store, at time.Time) *service {
	s := New(books, rentals, testPolicy).(*service)
	s.now = func() time.Time { return at }
	return s
}

func aBook() *model.Book {
	return &model.Book{ID: 7, Title: "Clean Code", Price: 10, AvailableCopies: 2}
}

func TestBorrow_BookNotFound(t *testing.T) {
	books := &bookMock{detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
		return nil, sql.ErrNoRows
	}}
	s := newTestService(books, &storeMock{}, time.Now())

	_, err := s.Borrow(context.Background(), 1, 99)
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestBorrow_OutOfStock(t *testing.T) {
	books := &bookMock{detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
		return aBook(), nil
	}}
	st := &storeMock{createFn: func(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error) {
		require.True(t, requireStock)
		return nil, rentalrepo.ErrOutOfStock
	}}
	s := newTestService(books, st, time.Now())

	_, err := s.Borrow(context.Background(), 1, 7)
	require.Error(t, err)
	require.Equal(t, ErrOutOfStock, Code(err))
}

func TestBorrow_Success(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	books := &bookMock{detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
		return aBook(), nil
	}}
	st := &storeMock{createFn: func(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error) {
		require.Equal(t, int64(1), userID)
		require.Equal(t, int64(7), bookID)
		require.Nil(t, sessionID)
		require.Equal(t, at, borrowedAt)
		require.Equal(t, at.Add(30*24*time.Hour), due)
		return &model.Rental{ID: 42, UserID: userID, BookID: bookID, Status: model.RentalBorrowed, BorrowedAt: borrowedAt, DueDate: due}, nil
	}}
	s := newTestService(books, st, at)

	rn, err := s.Borrow(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, int64(42), rn.ID)
	require.Equal(t, model.RentalBorrowed, rn.Status)
}

func TestReturn_NotFound(t *testing.T) {
	st := &storeMock{getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
		return nil, sql.ErrNoRows
	}}
	s := newTestService(&bookMock{}, st, time.Now())

	_, err := s.Return(context.Background(), 1, 404)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestReturn_NotOwner(t *testing.T) {
	st := &storeMock{getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
		return &model.Rental{ID: rentalID, UserID: 2, Status: model.RentalBorrowed}, nil
	}}
	s := newTestService(&bookMock{}, st, time.Now())

	_, err := s.Return(context.Background(), 1, 42)
	require.Equal(t, ErrNotOwner, Code(err))
	require.Zero(t, st.finishes)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	st := &storeMock{getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
		return &model.Rental{ID: rentalID, UserID: 1, Status: model.RentalReturned}, nil
	}}
	s := newTestService(&bookMock{}, st, time.Now())

	_, err := s.Return(context.Background(), 1, 42)
	require.Equal(t, ErrAlreadyReturned, Code(err))
	require.Zero(t, st.finishes, "a returned rental must not be touched again")
}

func TestReturn_OnTime_NoFine(t *testing.T) {
	due := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	at := due.Add(-29 * 24 * time.Hour) // same day as borrow
	st := &storeMock{
		getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 1, BookID: 7, Status: model.RentalBorrowed, DueDate: due}, nil
		},
		finishFn: func(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error) {
			require.False(t, overdue)
			require.Equal(t, 0.0, fineAmount)
			require.Equal(t, at, returnedAt)
			return &model.Rental{ID: rentalID, UserID: 1, Status: model.RentalReturned, ReturnedAt: &returnedAt}, nil
		},
	}
	s := newTestService(&bookMock{}, st, at)

	rn, err := s.Return(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, rn.Status)
	require.NotNil(t, rn.ReturnedAt)
}

func TestReturn_ThreeDaysLate(t *testing.T) {
	due := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	at := due.Add(72 * time.Hour)
	st := &storeMock{
		getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 1, BookID: 7, Status: model.RentalBorrowed, DueDate: due}, nil
		},
		finishFn: func(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error) {
			require.True(t, overdue)
			require.Equal(t, 4.5, fineAmount)
			return &model.Rental{ID: rentalID, UserID: 1, Status: model.RentalReturned, Overdue: true, FineAmount: fineAmount, ReturnedAt: &returnedAt}, nil
		},
	}
	s := newTestService(&bookMock{}, st, at)

	rn, err := s.Return(context.Background(), 1, 42)
	require.NoError(t, err)
	require.True(t, rn.Overdue)
	require.Equal(t, 4.5, rn.FineAmount)
}

func TestReturn_LostRace(t *testing.T) {
	st := &storeMock{
		getFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 1, Status: model.RentalBorrowed, DueDate: time.Now().Add(time.Hour)}, nil
		},
		finishFn: func(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := newTestService(&bookMock{}, st, time.Now())

	_, err := s.Return(context.Background(), 1, 42)
	require.Equal(t, ErrAlreadyReturned, Code(err))
}

func TestExtend_Disambiguation(t *testing.T) {
	missErr := sql.ErrNoRows

	cases := []struct {
		name string
		get  func(ctx context.Context, rentalID int64) (*model.Rental, error)
		want ErrCode
	}{
		{"missing", func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return nil, sql.ErrNoRows
		}, ErrNotFound},
		{"not owner", func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 2, Status: model.RentalBorrowed}, nil
		}, ErrNotOwner},
		{"returned", func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 1, Status: model.RentalReturned}, nil
		}, ErrAlreadyReturned},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &storeMock{
				extendFn: func(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error) {
					return nil, missErr
				},
				getFn: tc.get,
			}
			s := newTestService(&bookMock{}, st, time.Now())
			_, err := s.Extend(context.Background(), 1, 42, 7)
			require.Equal(t, tc.want, Code(err))
		})
	}
}

func TestExtend_Success(t *testing.T) {
	st := &storeMock{extendFn: func(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error) {
		require.Equal(t, 7, days)
		return &model.Rental{ID: rentalID, UserID: userID, Status: model.RentalBorrowed}, nil
	}}
	s := newTestService(&bookMock{}, st, time.Now())

	rn, err := s.Extend(context.Background(), 1, 42, 7)
	require.NoError(t, err)
	require.Equal(t, int64(42), rn.ID)
}

func TestSweepOverdue_Idempotent(t *testing.T) {
	flagged := map[int64]bool{10: false, 11: false}
	st := &storeMock{flagFn: func(ctx context.Context, now time.Time) (int64, error) {
		var n int64
		for id, done := range flagged {
			if !done {
				flagged[id] = true
				n++
			}
		}
		return n, nil
	}}
	s := newTestService(&bookMock{}, st, time.Now())

	n, err := s.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Second sweep finds nothing left to flag.
	n, err = s.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}
