package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/app"
	"github.com/lumenlearn/ce-platform/internal/mailer"
	"github.com/lumenlearn/ce-platform/internal/payment"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App             *app.Application
	DB              *pgxpool.Pool
	RedisClient     *redis.Client
	Mailer          *mailer.MockMailer
	PaymentProvider *payment.MockPaymentProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMailer := mailer.NewMockMailer()
	paymentProvider := payment.NewMockPaymentProvider()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	application := app.New(
		cfg,
		logger,
		db,
		redisClient,
		app.WithMailer(mockMailer),
		app.WithPaymentProvider(paymentProvider),
	)

	return &TestApp{
		App:             application,
		DB:              db,
		RedisClient:     redisClient,
		Mailer:          mockMailer,
		PaymentProvider: paymentProvider,
	}, nil
}
