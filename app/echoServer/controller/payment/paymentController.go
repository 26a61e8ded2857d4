package payment

import (
	"io"
	"log/slog"
	"net/http"

	"bookloft/app/echoServer/jwtx"
	ps "bookloft/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/payment/checkout
func (h *Controller) CreateCheckout(c echo.Context) error {
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.CreateRentalCheckout(c.Request().Context(), uid, req.BookID)
	if err != nil {
		h.Log.Error("create checkout", "err", err)
		switch ps.Code(err) {
		case ps.ErrInvalidBook:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ps.ErrInvalidPrice:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "book has no price"})
		case ps.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment provider unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/payment/verify
func (h *Controller) Verify(c echo.Context) error {
	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rn, err := h.Svc.VerifyCheckout(c.Request().Context(), req.SessionID)
	if err != nil {
		h.Log.Error("verify checkout", "err", err, "session_id", req.SessionID)
		switch ps.Code(err) {
		case ps.ErrIncompleteSession:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "checkout session not completed"})
		case ps.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment provider unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, rn)
}

// POST /v1/payment/pay-fine
func (h *Controller) PayFine(c echo.Context) error {
	var req PayFineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.CreateFineCheckout(c.Request().Context(), uid, req.RentalID)
	if err != nil {
		h.Log.Error("pay fine", "err", err)
		switch ps.Code(err) {
		case ps.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case ps.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ps.ErrAlreadyPaid:
			return c.JSON(http.StatusConflict, echo.Map{"message": "fine already paid"})
		case ps.ErrNoFineDue:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no fine due"})
		case ps.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment provider unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/payment/webhook
func (h *Controller) Webhook(c echo.Context) error {
	sig := c.Request().Header.Get("Stripe-Signature")
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}

	if err := h.Svc.HandleWebhook(c.Request().Context(), sig, raw); err != nil {
		h.Log.Error("payment webhook", "err", err)
		if ps.Code(err) == ps.ErrInvalidSignature {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid signature"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "webhook rejected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
