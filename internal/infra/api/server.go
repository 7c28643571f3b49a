package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"paypal-premium-service/internal/config"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/infra/redis"
	"paypal-premium-service/internal/usecase"
)

// Server wires the HTTP surface to the use cases. All dependencies are
// injected at construction; nothing here is package-global state.
type Server struct {
	gateway     adapter.ProviderGateway
	paymentUC   usecase.PaymentUseCase
	subUC       usecase.SubscriptionUseCase
	userUC      usecase.UserUseCase
	authUC      usecase.AuthUseCase
	entitlement usecase.EntitlementUseCase

	limiter *redis.RateLimiter // nil-safe

	clientID  string
	webhookID string
	origins   []string
	dev       bool
	log       *zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	gateway adapter.ProviderGateway,
	paymentUC usecase.PaymentUseCase,
	subUC usecase.SubscriptionUseCase,
	userUC usecase.UserUseCase,
	authUC usecase.AuthUseCase,
	entitlement usecase.EntitlementUseCase,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		gateway:     gateway,
		paymentUC:   paymentUC,
		subUC:       subUC,
		userUC:      userUC,
		authUC:      authUC,
		entitlement: entitlement,
		limiter:     limiter,
		clientID:    cfg.PayPal.ClientID,
		webhookID:   cfg.PayPal.WebhookID,
		origins:     cfg.Server.AllowedOrigins,
		dev:         cfg.Runtime.Dev,
		log:         logger,
	}
}

// Router builds the chi mux with the full route surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
	}))
	r.Use(func(next http.Handler) http.Handler {
		return Chain(next, TraceID(), RequestLog(s.log), Recover(s.log))
	})

	r.Get("/", s.handleLiveness)
	r.Get("/api/health-check", s.handleHealthCheck)
	r.Get("/test-paypal-auth", s.handleTestAuth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/paypal", func(r chi.Router) {
		r.Get("/script-url", s.handleScriptURL)
		r.Post("/create-order", s.handleCreateOrder)
		r.Post("/capture-order", s.handleCaptureOrder)
		r.Post("/create-payment", s.handleCreatePayment)
		r.Post("/capture-payment", s.handleCapturePayment)
	})

	r.Get("/api/plans", s.handleListPlans)
	r.Post("/api/plans", s.handleCreatePlan)

	r.Post("/api/subscriptions", s.handleCreateSubscription)
	r.Post("/api/subscriptions/{id}/cancel", s.handleCancelSubscription)
	r.Get("/api/subscriptions/{id}", s.handleFetchSubscription)

	r.Route("/api/user", func(r chi.Router) {
		r.Get("/subscription", s.handleUserSubscription)
		r.Post("/subscription/update", s.handleUpdateSubscription)
		r.Post("/create", s.handleUserCreate)
		r.Get("/check-email", s.handleCheckEmail)
	})

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/auth/me", s.handleMe)

	r.Post("/webhook", s.handleWebhook)

	return r
}

// scriptURL builds the client SDK URL from the configured client id; no
// network call.
func (s *Server) scriptURL(currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return "https://www.paypal.com/sdk/js?client-id=" + url.QueryEscape(s.clientID) + "&currency=" + url.QueryEscape(currency)
}
