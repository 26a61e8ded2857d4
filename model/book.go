// model/book.go
package model

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	AvailableCopies int64     `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}
