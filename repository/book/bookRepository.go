// repository/book/repo.go
package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookloft/model"
)

type ListQuery struct {
	Search string // matches title, author or category
	Sort   string // title | author | price | created_at
	Desc   bool
	Limit  int
	Offset int
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int) error
	List(ctx context.Context, q ListQuery) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, category, description, price, available_copies)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Category, b.Description, b.Price, b.AvailableCopies,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) AddCopies(ctx context.Context, bookID int64, n int) error {
	if n <= 0 {
		return errors.New("n must be > 0")
	}
	const q = `
		UPDATE books
		SET available_copies = available_copies + $2
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID, n)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var sortColumns = map[string]string{
	"title":      "title",
	"author":     "author",
	"price":      "price",
	"created_at": "created_at",
}

func (r *repo) List(ctx context.Context, lq ListQuery) ([]model.Book, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, title, author, category, description, price, available_copies, created_at
		FROM books`)

	var args []any
	if s := strings.TrimSpace(lq.Search); s != "" {
		args = append(args, "%"+s+"%")
		sb.WriteString(`
		WHERE title ILIKE $1 OR author ILIKE $1 OR category ILIKE $1`)
	}

	col, ok := sortColumns[lq.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if lq.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, "\n\t\tORDER BY %s %s, id DESC", col, dir)

	limit := lq.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, "\n\t\tLIMIT $%d", len(args))
	if lq.Offset > 0 {
		args = append(args, lq.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
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

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, category, description, price, available_copies, created_at
		FROM books
		WHERE id = $1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Category, &b.Description,
		&b.Price, &b.AvailableCopies, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
