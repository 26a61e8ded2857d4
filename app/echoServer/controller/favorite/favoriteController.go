package favorite

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookloft/app/echoServer/jwtx"
	fs "bookloft/service/favorite"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc fs.Service
	Log *slog.Logger
}

// POST /v1/favorites/:bookId
func (h *Controller) Add(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Add(c.Request().Context(), uid, bookID); err != nil {
		h.Log.Error("favorite add", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "favorited"})
}

// DELETE /v1/favorites/:bookId
func (h *Controller) Remove(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	found, err := h.Svc.Remove(c.Request().Context(), uid, bookID)
	if err != nil {
		h.Log.Error("favorite remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not favorited"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "unfavorited"})
}

// GET /v1/favorites
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	books, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("favorite list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}
