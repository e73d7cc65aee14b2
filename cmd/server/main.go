package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	api "github.com/examgate/examgate/internal/api/http"
	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/db"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/identity"
	"github.com/examgate/examgate/internal/notify"
	"github.com/examgate/examgate/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer dbh.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")

	identityStore := identity.NewSQLStore(dbh)
	examStore := exam.NewSQLStore(dbh)
	outbox := notify.NewOutbox(dbh)

	notifier, closeNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build notifier")
	}
	defer closeNotifier()

	authSvc := auth.NewAuthService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	identitySvc := identity.NewService(identityStore, authSvc, outbox, cfg.OTP.TTL, log)
	examSvc := exam.NewService(examStore, rosterAdapter{identityStore}, outbox, log)

	if err := identitySvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to provision bootstrap admin")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	api.Mount(r, authSvc, identitySvc, examSvc, log)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(outbox, notifier, cfg.Notify.PollInterval, log)
	go dispatcher.Run(runCtx)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()
	log.Info().Str("addr", cfg.Server.Address).Msg("examgate started")

	<-runCtx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}
	log.Info().Msg("examgate stopped")
}

func buildNotifier(cfg *config.Config, log zerolog.Logger) (notify.Notifier, func(), error) {
	switch cfg.Notify.Sink {
	case "smtp":
		n := notify.NewSMTPNotifier(
			cfg.Notify.SMTP.Host,
			cfg.Notify.SMTP.Port,
			cfg.Notify.SMTP.Username,
			cfg.Notify.SMTP.Password,
			cfg.Notify.SMTP.From,
		)
		return n, func() {}, nil
	case "amqp":
		n, err := notify.NewAMQPNotifier(
			cfg.Notify.AMQP.URL,
			cfg.Notify.AMQP.Exchange,
			cfg.Notify.AMQP.RoutingKey,
			cfg.Notify.AMQP.QueueName,
			log,
		)
		if err != nil {
			return nil, nil, err
		}
		return n, func() { _ = n.Close() }, nil
	default:
		return notify.LogNotifier{Log: log}, func() {}, nil
	}
}

// rosterAdapter bridges the identity store into the exam engine's Roster.
type rosterAdapter struct {
	store *identity.SQLStore
}

func (a rosterAdapter) Emails(ctx context.Context) ([]string, error) {
	return a.store.ListStudentEmails(ctx)
}

func (a rosterAdapter) Contact(ctx context.Context, studentID string) (exam.Contact, error) {
	st, err := a.store.StudentByID(ctx, studentID)
	if err != nil {
		return exam.Contact{}, err
	}
	return exam.Contact{Name: st.Name, Email: st.Email}, nil
}
