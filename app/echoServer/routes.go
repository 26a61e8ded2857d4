package echoServer

import (
	"net/http"

	"bookloft/app/echoServer/controller/auth"
	"bookloft/app/echoServer/controller/book"
	"bookloft/app/echoServer/controller/favorite"
	"bookloft/app/echoServer/controller/payment"
	"bookloft/app/echoServer/controller/rental"
	"bookloft/app/echoServer/controller/review"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth     *auth.Controller
	Book     *book.Controller
	Rental   *rental.Controller
	Payment  *payment.Controller
	Review   *review.Controller
	Favorite *favorite.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Provider callback; authenticated by its signature, not by JWT.
	pub.POST("/payment/webhook", c.Payment.Webhook)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(extractUserID)

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)
	// Admin endpoints
	authed.POST("/books", c.Book.Create)
	authed.POST("/books/:id/copies", c.Book.AddCopies)

	// Reviews
	authed.GET("/books/:id/reviews", c.Review.ForBook)
	authed.POST("/books/:id/reviews", c.Review.Write)
	authed.DELETE("/books/:id/reviews", c.Review.Remove)

	// Favorites
	authed.GET("/favorites", c.Favorite.List)
	authed.POST("/favorites/:bookId", c.Favorite.Add)
	authed.DELETE("/favorites/:bookId", c.Favorite.Remove)

	// Rentals
	authed.POST("/rentals/borrow", c.Rental.Borrow)
	authed.POST("/rentals/:id/return", c.Rental.Return)
	authed.POST("/rentals/:id/extend", c.Rental.Extend)
	authed.GET("/rentals/my", c.Rental.MyRentals)

	// Payments
	authed.POST("/payment/checkout", c.Payment.CreateCheckout)
	authed.POST("/payment/verify", c.Payment.Verify)
	authed.POST("/payment/pay-fine", c.Payment.PayFine)
}

// extractUserID lifts the sub claim into the context as an int64 user_id.
func extractUserID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tok, ok := ctx.Get("user").(*jwt.Token)
		if !ok || tok == nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		sub, ok := claims["sub"].(float64)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		ctx.Set("user_id", int64(sub))
		return next(ctx)
	}
}
