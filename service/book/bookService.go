package booksvc

import (
	"context"
	"errors"

	"bookloft/model"
	bookrepo "bookloft/repository/book"
)

type ListQuery = bookrepo.ListQuery

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int) error
	List(ctx context.Context, q ListQuery) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int) error
	List(ctx context.Context, q ListQuery) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, b *model.Book) error {
	if b.Title == "" || b.Author == "" || b.Price < 0 || b.AvailableCopies < 0 {
		return errors.New("invalid payload")
	}
	return s.r.Create(ctx, b)
}

func (s *service) AddCopies(ctx context.Context, bookID int64, n int) error {
	return s.r.AddCopies(ctx, bookID, n)
}

func (s *service) List(ctx context.Context, q ListQuery) ([]model.Book, error) {
	return s.r.List(ctx, q)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.Detail(ctx, id)
}
