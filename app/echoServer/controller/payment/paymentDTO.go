package payment

type CheckoutReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type VerifyReq struct {
	SessionID string `json:"session_id" validate:"required"`
}

type PayFineReq struct {
	RentalID int64 `json:"rental_id" validate:"required,gt=0"`
}
