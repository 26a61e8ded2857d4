package book

type CreateBookReq struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" validate:"gte=0"`
	AvailableCopies int64   `json:"available_copies" validate:"gte=0"`
}

type AddCopiesReq struct {
	Count int `json:"count" validate:"required,gt=0"`
}
