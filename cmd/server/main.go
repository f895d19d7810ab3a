// Server is the rental back-office HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rentcar-backoffice/internal/audit"
	audithandler "rentcar-backoffice/internal/audit/handler"
	auditrepo "rentcar-backoffice/internal/audit/repository"
	authhandler "rentcar-backoffice/internal/auth/handler"
	authservice "rentcar-backoffice/internal/auth/service"
	"rentcar-backoffice/internal/authz"
	branchhandler "rentcar-backoffice/internal/branch/handler"
	branchrepo "rentcar-backoffice/internal/branch/repository"
	branchservice "rentcar-backoffice/internal/branch/service"
	"rentcar-backoffice/internal/config"
	"rentcar-backoffice/internal/db"
	healthhandler "rentcar-backoffice/internal/health/handler"
	"rentcar-backoffice/internal/logintoken"
	ltrepo "rentcar-backoffice/internal/logintoken/repository"
	"rentcar-backoffice/internal/mail"
	"rentcar-backoffice/internal/security"
	"rentcar-backoffice/internal/server"
	"rentcar-backoffice/internal/server/middleware"
	"rentcar-backoffice/internal/telemetry"
	teleotel "rentcar-backoffice/internal/telemetry/otel"
	"rentcar-backoffice/internal/telemetry/producer"
	userrepo "rentcar-backoffice/internal/user/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Error("parse JWT private key failed", "error", err)
		os.Exit(1)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Error("parse JWT public key failed", "error", err)
		os.Exit(1)
	}
	provider := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	otelProviders, err := teleotel.NewProviders(ctx, cfg.OTLPEndpoint, "rentcar-backoffice", cfg.OTLPInsecure)
	if err != nil {
		logger.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	otelProviders.SetGlobal()
	defer func() { _ = otelProviders.Shutdown(context.Background()) }()

	// Audit events go to Kafka when brokers are configured, otherwise to the
	// OTLP log pipeline (a no-op when no endpoint is set).
	var emitter telemetry.Emitter
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitter = kafkaProducer
	} else {
		emitter = teleotel.NewEventEmitter(otelProviders.LoggerProvider)
	}
	asyncEmitter := telemetry.NewAsyncEmitter(emitter, logger)

	users := userrepo.NewPostgresRepository(database)
	tokens := ltrepo.NewPostgresRepository(database)
	branches := branchrepo.NewPostgresRepository(database)
	auditRepo := auditrepo.NewPostgresRepository(database)
	auditor := audit.NewLogger(auditRepo, asyncEmitter, logger)

	var sender mail.Sender
	if cfg.MailRelayURL != "" {
		sender = mail.NewRelayClient(cfg.MailRelayURL, cfg.MailRelayAPIKey, cfg.MailFrom)
	} else {
		logger.Warn("MAIL_RELAY_URL not set; mail goes to the log")
		sender = &mail.LogSender{Logf: func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		}}
	}

	policy, err := loadPolicy(cfg.AuthzPolicy)
	if err != nil {
		logger.Error("load authz policy failed", "error", err)
		os.Exit(1)
	}
	evaluator, err := authz.NewOPAEvaluator(policy)
	if err != nil {
		logger.Error("compile authz policy failed", "error", err)
		os.Exit(1)
	}

	authSvc := authservice.NewAuthService(users, tokens, sender, hasher, provider, auditor, logger,
		cfg.TFATTL(), cfg.ResetTTL())
	branchSvc := branchservice.NewBranchService(branches, auditor)

	handlers := server.Handlers{
		Auth:   authhandler.NewHandler(authSvc, logger),
		Branch: branchhandler.NewHandler(branchSvc, logger),
		Audit:  audithandler.NewHandler(auditRepo, logger),
		Health: healthhandler.NewHandler(map[string]healthhandler.Checker{
			"database": healthhandler.CheckerFunc(func(ctx context.Context) error {
				return database.PingContext(ctx)
			}),
			"authz": evaluator,
		}),
	}
	authenticator := middleware.NewAuthenticator(provider, tokens)
	router := server.NewRouter(handlers, authenticator, evaluator, logger, cfg.CORSOrigins())

	sweeper := logintoken.NewSweeper(tokens, cfg.SweepInterval(), logger)
	go sweeper.Run(ctx)

	srv := server.New(cfg.HTTPAddr, router, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// loadPolicy resolves AUTHZ_POLICY, which may be inline Rego or a file path.
// Empty means the built-in default policy.
func loadPolicy(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "package ") {
		return s, nil
	}
	b, err := os.ReadFile(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
