package http

import (
	"net/http"

	"github.com/event-registration-api/internal/application/attendee"
	"github.com/event-registration-api/internal/application/auth"
	"github.com/event-registration-api/internal/application/upload"
	"github.com/event-registration-api/internal/application/user"
	"github.com/event-registration-api/internal/application/verification"
	"github.com/event-registration-api/internal/config"
	"github.com/event-registration-api/internal/domain"
	"github.com/event-registration-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/event-registration-api/internal/infrastructure/jwt"
	s3infra "github.com/event-registration-api/internal/infrastructure/s3"
	"github.com/event-registration-api/internal/infrastructure/smtp"
	"github.com/event-registration-api/internal/infrastructure/sns"
	"github.com/event-registration-api/internal/transport/http/handler"
	appmiddleware "github.com/event-registration-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	SessionRepo  *dynamo.SessionRepo
	AttendeeRepo *dynamo.AttendeeRepo
	S3Store      *s3infra.Store
	Mailer       smtp.Mailer
	SMSSender    sns.SMSSender
	JWTProvider  *jwtinfra.Provider
	Verifier     verification.Service
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:      deps.UserRepo,
		SessionRepo:   deps.SessionRepo,
		Verifier:      deps.Verifier,
		Mailer:        deps.Mailer,
		SMSSender:     deps.SMSSender,
		JWTProvider:   deps.JWTProvider,
		AppURL:        cfg.AppURL,
		OTPTTL:        cfg.OTPTTL,
		EmailTokenTTL: cfg.EmailTokenTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
		SessionTTL:    cfg.SessionTTL,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	attendeeSvc := attendee.NewService(attendee.ServiceDeps{
		AttendeeRepo: deps.AttendeeRepo,
		UserRepo:     deps.UserRepo,
		Files:        deps.S3Store,
	})
	uploadSvc := upload.NewService(upload.ServiceDeps{
		Store:      deps.S3Store,
		PresignTTL: cfg.PresignTTL,
	})

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider, authSvc)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to OTP and magic-link endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	attendeeH := handler.NewAttendeeHandler(attendeeSvc)
	uploadH := handler.NewUploadHandler(uploadSvc)

	r.Route("/api/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register/mobile", authH.RegisterMobile)
			r.With(sensitiveRL.Limit).Post("/register/email", authH.RegisterEmail)
			r.With(sensitiveRL.Limit).Post("/login/mobile", authH.LoginMobile)
			r.With(sensitiveRL.Limit).Post("/login/email", authH.LoginEmail)
			r.With(sensitiveRL.Limit).Post("/verify", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/resend-verification", authH.ResendVerification)
			r.Get("/verify-email", authH.VerifyEmail)
			r.Post("/verify-email", authH.VerifyEmail)
			r.With(sensitiveRL.Limit).Post("/password-reset/request", authH.RequestPasswordReset)
			r.Post("/password-reset/confirm", authH.ResetPassword)

			r.With(authMw).Post("/logout", authH.Logout)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.GetMe)
			r.Patch("/users/me", userH.UpdateMe)

			r.Post("/attendees", attendeeH.Create)
			r.Get("/attendees/me", attendeeH.GetMine)
			r.Patch("/attendees/me", attendeeH.Update)

			r.Post("/uploads/presign", uploadH.Presign)
			r.Get("/uploads/presign", uploadH.PresignDownload)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/attendees", attendeeH.List)
				r.Get("/attendees/stats", attendeeH.Stats)
				r.Get("/attendees/{id}", attendeeH.Get)
				r.Delete("/attendees/{id}", attendeeH.Delete)
				r.Patch("/attendees/{id}/payment", attendeeH.UpdatePayment)
			})
		})
	})

	return r
}
