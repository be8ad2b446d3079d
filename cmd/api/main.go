package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/staybook/audit-service/internal/alertstream"
	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/config"
	"github.com/staybook/audit-service/internal/db"
	"github.com/staybook/audit-service/internal/handlers"
	"github.com/staybook/audit-service/internal/middleware"
	"github.com/staybook/audit-service/internal/models"
	"github.com/staybook/audit-service/internal/repo"
	"github.com/staybook/audit-service/internal/scheduler"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		slog.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	slog.Info("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := db.Run(dbURL); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	auditRepo := repo.NewAuditRepo(database)
	notificationRepo := repo.NewNotificationRepo(database)
	bookingRepo := repo.NewBookingRepo(database)
	operatorRepo := repo.NewOperatorRepo(database)

	var stream audit.Publisher
	if pub, err := alertstream.New(cfg.AlertStreamURL, cfg.AlertStreamChannel); err != nil {
		// The stream is an extra; alerts still land in the notifications table.
		slog.Error("alert stream unavailable", "error", err)
	} else if pub != nil {
		stream = pub
		defer pub.Close()
	}
	dispatcher := audit.NewAlertDispatcher(notificationRepo, stream)

	recorder, err := audit.NewRecorder(context.Background(), auditRepo, dispatcher,
		time.Duration(cfg.WriteTimeoutSeconds)*time.Second)
	if err != nil {
		slog.Error("recorder init failed", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	verifier := audit.NewVerifier(auditRepo, cfg.VerifyPageSize)
	reporter := audit.NewReporter(auditRepo, bookingRepo, recorder)

	if c := scheduler.Run(cfg.VerifyCron, time.Duration(cfg.VerifyWindowHours)*time.Hour, verifier, notificationRepo); c != nil {
		defer c.Stop()
	}

	router := newRouter(cfg, recorder, verifier, reporter, notificationRepo, operatorRepo)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		slog.Info("starting audit service", "port", cfg.Port, "tls", cfg.TLSCertFile != "")
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func newRouter(cfg config.Config, recorder *audit.Recorder, verifier *audit.Verifier,
	reporter *audit.Reporter, notificationRepo *repo.NotificationRepo, operatorRepo *repo.OperatorRepo) http.Handler {

	eventHandler := &handlers.EventHandler{Recorder: recorder}
	logsHandler := &handlers.LogsHandler{Verifier: verifier}
	verifyHandler := &handlers.VerifyHandler{Verifier: verifier}
	complianceHandler := &handlers.ComplianceHandler{Reporter: reporter}
	alertsHandler := &handlers.AlertsHandler{Repo: notificationRepo}
	authHandler := &handlers.AuthHandler{
		Ops:         operatorRepo,
		Recorder:    recorder,
		Secret:      []byte(cfg.JWTSecret),
		ExpireHours: cfg.JWTExpireHours,
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(float64(cfg.RateLimitPerMinute)/60.0), cfg.RateLimitPerMinute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RequestMeta)
	r.Use(limiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
			Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

			r.Get("/logs", logsHandler.ListLogs)
			r.Post("/verify", verifyHandler.RunVerification)
			r.Get("/alerts", alertsHandler.ListAlerts)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/auth/register", authHandler.Register)
				r.Post("/events", eventHandler.CreateEvent)
				r.Post("/events/deletion", eventHandler.CreateDeletionEvent)
				r.Post("/events/financial", eventHandler.CreateFinancialEvent)
				r.Post("/events/permission-change", eventHandler.CreatePermissionChangeEvent)
				r.Get("/compliance/{subjectID}", complianceHandler.GenerateReport)
			})
		})
	})

	return r
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
