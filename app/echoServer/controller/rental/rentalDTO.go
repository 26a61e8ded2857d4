package rental

type BorrowReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type ExtendReq struct {
	Days int `json:"days" validate:"required,gt=0,lte=30"`
}
