// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"bookloft/model"
	booksvc "bookloft/service/book"
)

type repoMock struct {
	createFn    func(ctx context.Context, b *model.Book) error
	addCopiesFn func(ctx context.Context, bookID int64, n int) error
	listFn      func(ctx context.Context, q booksvc.ListQuery) ([]model.Book, error)
	detailFn    func(ctx context.Context, id int64) (*model.Book, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int) error {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) List(ctx context.Context, q booksvc.ListQuery) ([]model.Book, error) {
	return m.listFn(ctx, q)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	cases := []model.Book{
		{Title: "", Author: "a", Price: 10},
		{Title: "t", Author: "", Price: 10},
		{Title: "t", Author: "a", Price: -1},
		{Title: "t", Author: "a", Price: 10, AvailableCopies: -1},
	}
	for _, b := range cases {
		if err := s.Create(context.Background(), &b); err == nil {
			t.Fatalf("expected error for %+v", b)
		}
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Clean Code" || b.Author != "Robert Martin" || b.Price != 10 {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)
	b := &model.Book{Title: "Clean Code", Author: "Robert Martin", Category: "Prog", Price: 10, AvailableCopies: 3}
	if err := s.Create(context.Background(), b); err != nil || b.ID != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", b.ID, err)
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int) error { return nil },
		listFn:      func(ctx context.Context, q booksvc.ListQuery) ([]model.Book, error) { return nil, nil },
		detailFn:    func(ctx context.Context, id int64) (*model.Book, error) { return &model.Book{}, nil },
	}
	s := booksvc.New(m)

	if err := s.AddCopies(context.Background(), 7, 3); err != nil {
		t.Fatalf("AddCopies error: %v", err)
	}
	if _, err := s.List(context.Background(), booksvc.ListQuery{}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Detail(context.Background(), 99); err != nil {
		t.Fatalf("Detail error: %v", err)
	}
}
