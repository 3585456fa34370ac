package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/event-registration-api/internal/application/verification"
	"github.com/event-registration-api/internal/config"
	"github.com/event-registration-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-registration-api/internal/infrastructure/jwt"
	s3infra "github.com/event-registration-api/internal/infrastructure/s3"
	"github.com/event-registration-api/internal/infrastructure/smtp"
	"github.com/event-registration-api/internal/infrastructure/sns"
	transporthttp "github.com/event-registration-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	isDev := cfg.AppEnv != "production"

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	sessionRepo := dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)
	otpRepo := dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs)
	tokenRepo := dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.VerificationTokens)
	attendeeRepo := dynamo.NewAttendeeRepo(dynamoClient, cfg.DynamoTables.Attendees)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg)

	// SMTP mailer. In development without credentials, emails go to the log.
	var mailer smtp.Mailer
	if cfg.SMTPUsername == "" && isDev {
		mailer = smtp.NoopMailer{}
	} else {
		mailer = smtp.NewMailer(cfg)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
		smsSender = sns.Unconfigured{Dev: isDev}
	}

	verifier := verification.NewService(verification.ServiceDeps{
		OTPRepo:   otpRepo,
		TokenRepo: tokenRepo,
		UserRepo:  userRepo,
		OTPLength: cfg.OTPLength,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go verifier.RunSweeper(sweepCtx, cfg.SweepInterval)

	deps := &transporthttp.Deps{
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		AttendeeRepo: attendeeRepo,
		S3Store:      s3Store,
		Mailer:       mailer,
		SMSSender:    smsSender,
		JWTProvider:  jwtProvider,
		Verifier:     verifier,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
