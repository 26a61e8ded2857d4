// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalBorrowed RentalStatus = "borrowed"
	RentalReturned RentalStatus = "returned"
)

type Rental struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	BookID          int64        `json:"book_id"`
	StripeSessionID *string      `json:"stripe_session_id,omitempty"`
	Status          RentalStatus `json:"status"`
	BorrowedAt      time.Time    `json:"borrowed_at"`
	DueDate         time.Time    `json:"due_date"`
	ReturnedAt      *time.Time   `json:"returned_at,omitempty"`
	Overdue         bool         `json:"overdue"`
	FineAmount      float64      `json:"fine_amount"`
	FinePaid        bool         `json:"fine_paid"`
}
