package reviewsvc

import (
	"context"
	"errors"

	"bookloft/model"
)

var ErrBadRating = errors.New("rating must be between 1 and 5")

type Repo interface {
	Upsert(ctx context.Context, rv *model.Review) error
	ListForBook(ctx context.Context, bookID int64) ([]model.Review, float64, error)
	Delete(ctx context.Context, userID, bookID int64) (bool, error)
}

type BookReviews struct {
	Reviews []model.Review `json:"reviews"`
	Average float64        `json:"average_rating"`
}

type Service interface {
	Write(ctx context.Context, userID, bookID int64, rating int, comment string) (*model.Review, error)
	ForBook(ctx context.Context, bookID int64) (*BookReviews, error)
	Remove(ctx context.Context, userID, bookID int64) (bool, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Write(ctx context.Context, userID, bookID int64, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrBadRating
	}
	rv := &model.Review{UserID: userID, BookID: bookID, Rating: rating, Comment: comment}
	if err := s.r.Upsert(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *service) ForBook(ctx context.Context, bookID int64) (*BookReviews, error) {
	rows, avg, err := s.r.ListForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &BookReviews{Reviews: rows, Average: avg}, nil
}

func (s *service) Remove(ctx context.Context, userID, bookID int64) (bool, error) {
	return s.r.Delete(ctx, userID, bookID)
}
