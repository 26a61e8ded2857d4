// repository/review/repo.go
package reviewrepo

import (
	"context"
	"database/sql"

	"bookloft/model"
)

type Repo interface {
	Upsert(ctx context.Context, rv *model.Review) error
	ListForBook(ctx context.Context, bookID int64) ([]model.Review, float64, error)
	Delete(ctx context.Context, userID, bookID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Upsert(ctx context.Context, rv *model.Review) error {
	// One review per user per book; writing again replaces it.
	const q = `
		INSERT INTO reviews (user_id, book_id, rating, comment)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, rv.UserID, rv.BookID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt)
}

func (r *repo) ListForBook(ctx context.Context, bookID int64) ([]model.Review, float64, error) {
	const q = `
		SELECT id, user_id, book_id, rating, comment, created_at
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Review
	var sum int
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, 0, err
		}
		sum += rv.Rating
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var avg float64
	if len(out) > 0 {
		avg = float64(sum) / float64(len(out))
	}
	return out, avg, nil
}

func (r *repo) Delete(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `
		DELETE FROM reviews
		WHERE user_id = $1 AND book_id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
