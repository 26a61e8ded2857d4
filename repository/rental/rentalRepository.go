// repository/rental/repo.go
package rentalrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookloft/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrOutOfStock: the conditional decrement found no available copy.
	ErrOutOfStock = errors.New("no copies available")
	// ErrDuplicateSession: a rental for this checkout session already exists.
	ErrDuplicateSession = errors.New("checkout session already recorded")
)

// HistoryRow is a rental joined with its book title for listings.
type HistoryRow struct {
	RentalID   int64      `json:"rental_id"`
	BookID     int64      `json:"book_id"`
	BookTitle  string     `json:"book_title"`
	Status     string     `json:"status"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Overdue    bool       `json:"overdue"`
	FineAmount float64    `json:"fine_amount"`
	FinePaid   bool       `json:"fine_paid"`
}

type Repo interface {
	// CreateBorrow inserts a rental and takes one copy of the book in a
	// single transaction. With requireStock the whole unit fails with
	// ErrOutOfStock when no copy is available; without it the copy count
	// floors at zero and the rental is recorded anyway (used when the
	// customer has already paid).
	CreateBorrow(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (*model.Rental, error)

	Get(ctx context.Context, rentalID int64) (*model.Rental, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Rental, error)

	// FinishReturn closes a borrowed rental and frees its copy. The status
	// guard is part of the UPDATE, so a concurrent return loses with
	// sql.ErrNoRows. The copy increment is best-effort: a vanished book
	// record does not fail the return.
	FinishReturn(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (*model.Rental, error)

	// SettleFine marks an outstanding fine paid. Returns false when there
	// was nothing to settle (no fine, or already paid).
	SettleFine(ctx context.Context, rentalID int64) (bool, error)

	// Extend pushes the due date out by n days, only while borrowed and
	// only for the owner.
	Extend(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error)

	// FlagOverdue marks every borrowed rental past its due date. Re-running
	// flags nothing new; returns the number of rows flagged.
	FlagOverdue(ctx context.Context, now time.Time) (int64, error)

	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const rentalCols = `id, user_id, book_id, stripe_session_id, status, borrowed_at, due_date, returned_at, overdue, fine_amount, fine_paid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*model.Rental, error) {
	var rn model.Rental
	err := row.Scan(
		&rn.ID, &rn.UserID, &rn.BookID, &rn.StripeSessionID, &rn.Status,
		&rn.BorrowedAt, &rn.DueDate, &rn.ReturnedAt, &rn.Overdue,
		&rn.FineAmount, &rn.FinePaid,
	)
	if err != nil {
		return nil, err
	}
	return &rn, nil
}

func (r *repo) CreateBorrow(ctx context.Context, userID, bookID int64, sessionID *string, borrowedAt, due time.Time, requireStock bool) (rn *model.Rental, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Guard: only take a copy if one is left. Losing the race means 0 rows,
	// never a negative count.
	const dec = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1
		AND available_copies > 0`
	res, err := tx.ExecContext(ctx, dec, bookID)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 && requireStock {
		return nil, ErrOutOfStock
	}

	const ins = `
		INSERT INTO rentals (user_id, book_id, stripe_session_id, status, borrowed_at, due_date)
		VALUES ($1, $2, $3, 'borrowed', $4, $5)
		RETURNING ` + rentalCols
	rn, err = scanRental(tx.QueryRowContext(ctx, ins, userID, bookID, sessionID, borrowedAt, due))
	if err != nil {
		if isUniqueViolation(err, "rentals_stripe_session_id_key") {
			err = ErrDuplicateSession
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rn, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}

func (r *repo) Get(ctx context.Context, rentalID int64) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, q, rentalID))
}

func (r *repo) FindBySessionID(ctx context.Context, sessionID string) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE stripe_session_id = $1`
	rn, err := scanRental(r.db.QueryRowContext(ctx, q, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rn, nil
}

func (r *repo) FinishReturn(ctx context.Context, rentalID int64, returnedAt time.Time, overdue bool, fineAmount float64) (rn *model.Rental, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		UPDATE rentals
		SET status = 'returned',
			returned_at = $2,
			overdue = overdue OR $3,
			fine_amount = $4
		WHERE id = $1
		AND status = 'borrowed'
		RETURNING ` + rentalCols
	rn, err = scanRental(tx.QueryRowContext(ctx, q, rentalID, returnedAt, overdue, fineAmount))
	if err != nil {
		return nil, err
	}

	const inc = `
		UPDATE books
		SET available_copies = available_copies + 1
		WHERE id = $1`
	if _, err = tx.ExecContext(ctx, inc, rn.BookID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rn, nil
}

func (r *repo) SettleFine(ctx context.Context, rentalID int64) (bool, error) {
	const q = `
		UPDATE rentals
		SET fine_paid = TRUE
		WHERE id = $1
		AND fine_paid = FALSE
		AND fine_amount > 0`
	res, err := r.db.ExecContext(ctx, q, rentalID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Extend(ctx context.Context, rentalID, userID int64, days int) (*model.Rental, error) {
	const q = `
		UPDATE rentals
		SET due_date = due_date + make_interval(days => $3)
		WHERE id = $1
		AND user_id = $2
		AND status = 'borrowed'
		RETURNING ` + rentalCols
	return scanRental(r.db.QueryRowContext(ctx, q, rentalID, userID, days))
}

func (r *repo) FlagOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE rentals
		SET overdue = TRUE
		WHERE status = 'borrowed'
		AND due_date < $1
		AND overdue = FALSE`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = `
		SELECT
			r.id          AS rental_id,
			r.book_id     AS book_id,
			b.title       AS book_title,
			r.status      AS status,
			r.borrowed_at AS borrowed_at,
			r.due_date    AS due_date,
			r.returned_at AS returned_at,
			r.overdue     AS overdue,
			r.fine_amount AS fine_amount,
			r.fine_paid   AS fine_paid
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.borrowed_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.RentalID, &h.BookID, &h.BookTitle, &h.Status,
			&h.BorrowedAt, &h.DueDate, &h.ReturnedAt, &h.Overdue,
			&h.FineAmount, &h.FinePaid,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
