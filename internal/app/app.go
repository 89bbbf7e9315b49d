package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenlearn/ce-platform/internal/domain"
	"github.com/lumenlearn/ce-platform/internal/enrollment"
	"github.com/lumenlearn/ce-platform/internal/mailer"
	"github.com/lumenlearn/ce-platform/internal/payment"
	"github.com/lumenlearn/ce-platform/internal/promo"
	"github.com/lumenlearn/ce-platform/internal/purchase"
	"github.com/lumenlearn/ce-platform/internal/repository"
	appvalidator "github.com/lumenlearn/ce-platform/internal/validator"
	"github.com/lumenlearn/ce-platform/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	CancelUrl     string
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	OtelCollectorUrl string
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	userRepo         domain.UserRepository
	catalogRepo      domain.CatalogRepository
	promoRepo        domain.PromoRepository
	paymentRepo      domain.PaymentRepository
	enrollmentRepo   domain.EnrollmentRepository
	subscriptionRepo domain.SubscriptionRepository
	giftRepo         domain.GiftRepository

	paymentProvider domain.PaymentProvider

	promoValidator *promo.Validator
	purchases      *purchase.Service
	reconciler     *purchase.Reconciler
	enrollments    *enrollment.Service
}

// Option overrides a collaborator before the domain services are built.
// The integration suite uses these to swap in mock outbound dependencies.
type Option func(*Application)

func WithMailer(m mailer.Mailer) Option {
	return func(app *Application) {
		app.mailer = m
	}
}

func WithPaymentProvider(p domain.PaymentProvider) Option {
	return func(app *Application) {
		app.paymentProvider = p
	}
}

// New wires an Application from an established database pool and redis
// client. Run is the flag-parsing production entrypoint; tests and the
// integration suite construct Config directly and call New.
func New(cfg Config, logger *slog.Logger, db *pgxpool.Pool, redisClient redis.UniversalClient, opts ...Option) *Application {
	app := &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		sessionManager: newSessionManager(redisClient),

		userRepo:         repository.NewPostgresUserRepository(db),
		catalogRepo:      repository.NewPostgresCatalogRepository(db),
		promoRepo:        repository.NewPostgresPromoRepository(db),
		paymentRepo:      repository.NewPostgresPaymentRepository(db),
		enrollmentRepo:   repository.NewPostgresEnrollmentRepository(db),
		subscriptionRepo: repository.NewPostgresSubscriptionRepository(db),
		giftRepo:         repository.NewPostgresGiftRepository(db),

		paymentProvider: payment.NewStripePaymentProvider(cfg.Stripe.SuccessUrl, cfg.Stripe.CancelUrl),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.initServices()

	return app
}

// initServices builds the domain services from whatever repositories and
// providers the Application currently holds. Tests swap collaborators in and
// call it again.
func (app *Application) initServices() {
	app.promoValidator = promo.NewValidator(app.promoRepo)
	app.purchases = purchase.NewService(app.catalogRepo, app.promoValidator, app.paymentProvider, app.logger)
	app.reconciler = purchase.NewReconciler(
		app.paymentRepo,
		app.enrollmentRepo,
		app.subscriptionRepo,
		app.giftRepo,
		app.promoRepo,
		app.catalogRepo,
		app.paymentProvider,
		app.mailer,
		app.logger,
	)
	app.enrollments = enrollment.NewService(app.enrollmentRepo, app.subscriptionRepo, app.catalogRepo)
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "LumenLearn <no-reply@lumenlearn.io>", "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", "", "Stripe secret key")
	flag.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", "", "Stripe webhook secret")
	flag.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", "https://example.com/success.html", "Stripe payment success page")
	flag.StringVar(&cfg.Stripe.CancelUrl, "stripe-cancel-url", "https://example.com/cancel.html", "Stripe payment cancel page")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	app := New(cfg, logger, db, redisClient)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

func newSessionManager(client redis.UniversalClient) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client.(*redis.Client))
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)
	stopGiftDelivery := make(chan struct{})

	go app.runGiftDelivery(stopGiftDelivery)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		close(stopGiftDelivery)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

const giftDeliveryInterval = time.Hour

// runGiftDelivery periodically sends gift notifications whose scheduled
// delivery date has arrived.
func (app *Application) runGiftDelivery(stop <-chan struct{}) {
	ticker := time.NewTicker(giftDeliveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			delivered, err := app.reconciler.DeliverDueGifts(ctx)
			cancel()

			switch {
			case err != nil:
				app.logger.Error("gift delivery sweep failed", "error", err)
			case delivered > 0:
				app.logger.Info("delivered scheduled gifts", "count", delivered)
			}
		case <-stop:
			return
		}
	}
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(chimiddleware.RequestID)
	r.Use(otelchi.Middleware("ce-platform-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", app.RegisterUser)
		r.Post("/login", app.Login)
		r.Post("/logout", app.Logout)
	})

	r.With(app.requireAuthentication).Get("/users/me", app.GetCurrentUser)

	r.Route("/purchase", func(r chi.Router) {
		r.Get("/pricing", app.GetPricingHandler)
		r.Post("/validate-promo", app.ValidatePromoHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)

			r.Post("/course", app.PurchaseCourseHandler)
			r.Post("/membership", app.PurchaseMembershipHandler)
			r.Post("/program", app.PurchaseProgramHandler)
			r.Post("/gift", app.PurchaseGiftHandler)
		})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/stripe", app.StripeWebhookHandler)
	})

	r.With(app.requireAuthentication).Route("/enrollment", func(r chi.Router) {
		r.Get("/status", app.GetEnrollmentStatusHandler)
		r.Get("/history", app.GetEnrollmentHistoryHandler)
		r.Get("/check-access", app.CheckAccessHandler)
	})

	return r
}
