package favoritesvc

import (
	"context"

	"bookloft/model"
)

type Repo interface {
	Add(ctx context.Context, userID, bookID int64) error
	Remove(ctx context.Context, userID, bookID int64) (bool, error)
	ListBooks(ctx context.Context, userID int64) ([]model.Book, error)
}

type Service interface {
	Add(ctx context.Context, userID, bookID int64) error
	Remove(ctx context.Context, userID, bookID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]model.Book, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Add(ctx context.Context, userID, bookID int64) error {
	return s.r.Add(ctx, userID, bookID)
}

func (s *service) Remove(ctx context.Context, userID, bookID int64) (bool, error) {
	return s.r.Remove(ctx, userID, bookID)
}

func (s *service) List(ctx context.Context, userID int64) ([]model.Book, error) {
	return s.r.ListBooks(ctx, userID)
}
