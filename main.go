// Package main bookloft API.
//
// @title           bookloft API
// @version         1.0
// @description     book rental service (catalog, rentals, fines, payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookloft/app/echoServer"
	authctrl "bookloft/app/echoServer/controller/auth"
	bookctrl "bookloft/app/echoServer/controller/book"
	favoritectrl "bookloft/app/echoServer/controller/favorite"
	paymentctrl "bookloft/app/echoServer/controller/payment"
	rentalctrl "bookloft/app/echoServer/controller/rental"
	reviewctrl "bookloft/app/echoServer/controller/review"
	"bookloft/app/echoServer/validation"
	"bookloft/config"
	bookrepo "bookloft/repository/book"
	favoriterepo "bookloft/repository/favorite"
	rentalrepo "bookloft/repository/rental"
	reviewrepo "bookloft/repository/review"
	striperepo "bookloft/repository/stripe"
	userrepo "bookloft/repository/user"
	authsvc "bookloft/service/auth"
	booksvc "bookloft/service/book"
	favoritesvc "bookloft/service/favorite"
	paymentsvc "bookloft/service/payment"
	rentalsvc "bookloft/service/rental"
	reviewsvc "bookloft/service/review"
	"bookloft/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)
	vr := reviewrepo.New(db)
	fr := favoriterepo.New(db)
	sr := striperepo.NewHTTP(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	rs := rentalsvc.New(br, rr, rentalsvc.Policy{
		FinePerDay: cfg.FinePerDay,
		Period:     cfg.RentalPeriod,
	})
	ps := paymentsvc.New(sr, br, rr, paymentsvc.Checkout{
		SuccessURL:   cfg.CheckoutSuccessURL,
		CancelURL:    cfg.CheckoutCancelURL,
		Currency:     cfg.Currency,
		RentalPeriod: cfg.RentalPeriod,
	})
	vs := reviewsvc.New(vr)
	fs := favoritesvc.New(fr)

	// overdue sweep
	sweeper := rentalsvc.NewSweeper(rs, log)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Error("sweeper start failed", "err", err, "schedule", cfg.SweepSchedule)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: vs, V: v, Log: log}
	favoriteC := &favoritectrl.Controller{Svc: fs, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Rental:   rentalC,
		Payment:  paymentC,
		Review:   reviewC,
		Favorite: favoriteC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
