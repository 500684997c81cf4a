package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/http"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store/drivers/mongo"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store/drivers/sqlite"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/mailx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/objectx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/upix"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the quiz service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	mailer     mailx.Sender
	objects    *objectx.Presigner // nil when uploads are not configured

	// Services
	otpService          *service.OTPService
	registrationService *service.RegistrationService
	authService         *service.AuthService
	userService         *service.UserService
	fieldService        *service.FieldService
	questionService     *service.QuestionService
	progressService     *service.ProgressService
	paymentService      *service.PaymentService
	housekeepingService *service.HousekeepingService // sqlite only; mongo expires OTPs with a TTL index

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "quiz-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keyManager, err := InitTokenKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initObjects(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.seedAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		if err := app.housekeepingService.Start(); err != nil {
			return fmt.Errorf("failed to start housekeeping: %w", err)
		}
	}

	app.logger.Info("quiz service starting", "port", app.cfg.Port, "version", BuildVersion, "store", app.cfg.StoreDriver)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops background jobs and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down quiz service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("quiz service stopped")
	return nil
}

// initDatabase opens the configured driver and applies its schema.
func (app *Application) initDatabase(ctx context.Context) error {
	switch app.cfg.StoreDriver {
	case "mongo":
		if app.cfg.MongoURI == "" {
			return errors.New("QUIZ_MONGO_URI is required for the mongo driver")
		}
		db, err := mongo.NewStore(ctx, app.cfg.MongoURI, app.cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		app.db = db

	case "sqlite", "":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db

	default:
		return fmt.Errorf("unknown QUIZ_STORE_DRIVER %q", app.cfg.StoreDriver)
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initMailer picks SMTP when a host is configured and the log driver
// otherwise.
func (app *Application) initMailer() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("SMTP_HOST not set - mail is written to the log")
		app.mailer = &mailx.LogSender{Logger: app.logger}
		return nil
	}

	sender, err := mailx.NewSMTPSender(mailx.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Secure:   app.cfg.SMTPSecure,
		Username: app.cfg.SMTPUser,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.MailFrom,
		ReplyTo:  app.cfg.MailReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to configure SMTP: %w", err)
	}
	app.mailer = sender
	app.logger.Info("smtp mail driver enabled", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
	return nil
}

// initObjects configures screenshot uploads when a bucket is set.
func (app *Application) initObjects(ctx context.Context) error {
	cfg := objectx.Config{
		Region:    app.cfg.S3Region,
		Bucket:    app.cfg.S3Bucket,
		Endpoint:  app.cfg.S3Endpoint,
		AccessKey: app.cfg.S3AccessKey,
		SecretKey: app.cfg.S3SecretKey,
		PathStyle: app.cfg.S3PathStyle,
	}
	if !cfg.Enabled() {
		app.logger.Warn("S3_BUCKET not set - payment screenshot uploads are disabled")
		return nil
	}

	p, err := objectx.NewPresigner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to configure object storage: %w", err)
	}
	app.objects = p
	app.logger.Info("screenshot uploads enabled", "bucket", cfg.Bucket)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	brand := mailx.Brand{
		Product:   app.cfg.BrandName,
		PolicyURL: app.cfg.PolicyURL,
		Support:   app.cfg.Support,
	}
	tokens := &service.TokenIssuer{
		Keys:     app.keyManager,
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
		TTL:      app.cfg.AuthPolicy.TokenTTL,
	}

	app.otpService = &service.OTPService{
		Store:  app.db,
		Mailer: app.mailer,
		Brand:  brand,
		Policy: app.cfg.OTPPolicy,
	}
	app.registrationService = &service.RegistrationService{
		Store:  app.db,
		Mailer: app.mailer,
		Brand:  brand,
		Tokens: tokens,
		Policy: app.cfg.AuthPolicy,
	}
	app.authService = &service.AuthService{Store: app.db, Tokens: tokens}
	app.userService = &service.UserService{Store: app.db, Policy: app.cfg.AuthPolicy}
	app.fieldService = &service.FieldService{Store: app.db}
	app.questionService = &service.QuestionService{Store: app.db}
	app.progressService = &service.ProgressService{Store: app.db}
	if app.cfg.UPIPayeeVPA == "" {
		app.logger.Warn("UPI_PAYEE_VPA not set - payment orders cannot be created")
	}
	app.paymentService = &service.PaymentService{
		Store:   app.db,
		Payee:   upix.Payee{VPA: app.cfg.UPIPayeeVPA, Name: app.cfg.UPIPayeeName},
		Objects: app.objects,
	}

	if app.cfg.StoreDriver != "mongo" {
		app.housekeepingService = service.NewHousekeepingService(
			app.db,
			app.logger,
			app.cfg.HousekeepingSchedule,
		)
	}
}

// seedAdmin creates the configured admin account on first start.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" {
		return nil
	}
	if app.cfg.AdminPassword == "" {
		return errors.New("QUIZ_ADMIN_PASSWORD is required when QUIZ_ADMIN_EMAIL is set")
	}

	ctx = slogx.WithContext(ctx, app.logger)
	created, err := app.userService.SeedAdmin(ctx, app.cfg.AdminName, app.cfg.AdminEmail, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		app.logger.Info("admin account created", "email", app.cfg.AdminEmail)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.CORSOrigins,
	)

	router.OTPService = app.otpService
	router.RegistrationService = app.registrationService
	router.AuthService = app.authService
	router.UserService = app.userService
	router.FieldService = app.fieldService
	router.QuestionService = app.questionService
	router.ProgressService = app.progressService
	router.PaymentService = app.paymentService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
