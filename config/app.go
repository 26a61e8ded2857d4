package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `env:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `env:"CHECKOUT_CANCEL_URL"`
	Currency            string `env:"CURRENCY" default:"usd"`

	// Rental policy knobs.
	FinePerDay    float64       `env:"FINE_PER_DAY" default:"1.5"`
	RentalPeriod  time.Duration `env:"RENTAL_PERIOD" default:"720h"`
	SweepSchedule string        `env:"SWEEP_SCHEDULE" default:"@hourly"`
}
