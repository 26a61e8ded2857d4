// repository/favorite/repo.go
package favoriterepo

import (
	"context"
	"database/sql"

	"bookloft/model"
)

type Repo interface {
	Add(ctx context.Context, userID, bookID int64) error
	Remove(ctx context.Context, userID, bookID int64) (bool, error)
	ListBooks(ctx context.Context, userID int64) ([]model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Add(ctx context.Context, userID, bookID int64) error {
	// Re-favoriting is a no-op.
	const q = `
		INSERT INTO favorites (user_id, book_id)
		VALUES ($1,$2)
		ON CONFLICT (user_id, book_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, bookID)
	return err
}

func (r *repo) Remove(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `
		DELETE FROM favorites
		WHERE user_id = $1 AND book_id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ListBooks(ctx context.Context, userID int64) ([]model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.author, b.category, b.description, b.price, b.available_copies, b.created_at
		FROM favorites f
		JOIN books b ON b.id = f.book_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Category, &b.Description,
			&b.Price, &b.AvailableCopies, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
