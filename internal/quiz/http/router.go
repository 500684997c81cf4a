package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"

	_ "github.com/himanshu0633/mytestbuddiesbackend/api/quiz" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the profiles applied per route group.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Auth     httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the process wide profiles from pkg/httpx.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Auth:     httpx.AuthLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// RateLimits may be replaced before ApplyRoutes.
	RateLimits RateLimits

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	OTPService          *service.OTPService
	RegistrationService *service.RegistrationService
	AuthService         *service.AuthService
	UserService         *service.UserService
	FieldService        *service.FieldService
	QuestionService     *service.QuestionService
	ProgressService     *service.ProgressService
	PaymentService      *service.PaymentService
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		RateLimits:   DefaultRateLimits(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// CORS runs inside the logger so preflights are logged too.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(httpx.DefaultCORS(corsOrigins)),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerFields()
	r.registerQuestions()
	r.registerProgress()
	r.registerPayments()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MyTestBuddies Quiz API
//	@version		0.1.0
//	@description	Quiz platform backend: OTP verified registration, quiz fields and questions, graded progress and UPI payment review.
//	@description
//	@description				Questions served to non-admin callers never include the correct answer or the solution.
//
//	@contact.name				MyTestBuddies
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h for any signed in caller.
func (r *Router) authed(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.Authn(r.keys.Verifier),
		httpx.RateLimitByUser(r.RateLimits.Moderate),
	)
}

// admin wraps h for callers holding the admin role.
func (r *Router) admin(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.Authn(r.keys.Verifier),
		httpx.RequireRole(string(domain.RoleAdmin)),
		httpx.RateLimitByUser(r.RateLimits.Moderate),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		OTPService:          r.OTPService,
		RegistrationService: r.RegistrationService,
		AuthService:         r.AuthService,
	}

	// Keyed by IP and email so one client cannot flood an inbox.
	r.Mux.Handle("POST /v1/auth/send-otp",
		httpx.Chain(http.HandlerFunc(h.HandleSendOTP),
			httpx.RateLimitByIPAndJSONField(r.RateLimits.Strict, "email"),
		),
	)

	authLimit := httpx.RateLimitByIP(r.RateLimits.Auth)
	r.Mux.Handle("POST /v1/auth/verify-otp", httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP), authLimit))
	r.Mux.Handle("POST /v1/auth/register", httpx.Chain(http.HandlerFunc(h.HandleRegister), authLimit))
	r.Mux.Handle("POST /v1/auth/login", httpx.Chain(http.HandlerFunc(h.HandleLogin), authLimit))

	r.Mux.Handle("GET /v1/auth/me", r.authed(h.HandleMe))
}

func (r *Router) registerFields() {
	h := &FieldsHandler{FieldService: r.FieldService}

	r.Mux.Handle("GET /v1/fields", r.authed(h.HandleList))
	r.Mux.Handle("GET /v1/fields/{id}", r.authed(h.HandleGet))
	r.Mux.Handle("GET /v1/fields/{id}/full", r.authed(h.HandleGetFull))

	r.Mux.Handle("POST /v1/fields", r.admin(h.HandleCreate))
	r.Mux.Handle("PUT /v1/fields/{id}", r.admin(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/fields/{id}", r.admin(h.HandleDelete))
}

func (r *Router) registerQuestions() {
	h := &QuestionsHandler{QuestionService: r.QuestionService}

	r.Mux.Handle("GET /v1/fields/{id}/questions", r.authed(h.HandleList))
	r.Mux.Handle("GET /v1/questions/{id}", r.authed(h.HandleGet))

	r.Mux.Handle("POST /v1/fields/{id}/questions", r.admin(h.HandleCreate))
	r.Mux.Handle("PUT /v1/questions/{id}", r.admin(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/questions/{id}", r.admin(h.HandleDelete))
}

func (r *Router) registerProgress() {
	h := &ProgressHandler{ProgressService: r.ProgressService}

	r.Mux.Handle("POST /v1/fields/{id}/answers", r.authed(h.HandleSubmit))
	r.Mux.Handle("GET /v1/fields/{id}/progress", r.authed(h.HandleGet))
}

func (r *Router) registerPayments() {
	h := &PaymentsHandler{PaymentService: r.PaymentService}

	r.Mux.Handle("POST /v1/payments/orders", r.authed(h.HandleCreateOrder))
	r.Mux.Handle("POST /v1/payments/screenshots", r.authed(h.HandlePresignScreenshot))
	r.Mux.Handle("POST /v1/payments/orders/{orderId}/proof", r.authed(h.HandleSubmitProof))
	r.Mux.Handle("GET /v1/payments", r.authed(h.HandleListMine))
	r.Mux.Handle("GET /v1/fields/{id}/access", r.authed(h.HandleAccess))

	r.Mux.Handle("GET /v1/admin/payments", r.admin(h.HandleListForReview))
	r.Mux.Handle("POST /v1/admin/payments/{id}/verify", r.admin(h.HandleReview))
}

func (r *Router) registerAdmin() {
	h := &AdminUsersHandler{UserService: r.UserService}

	r.Mux.Handle("POST /v1/admin/users/{id}/disable", r.admin(h.HandleDisable))
	r.Mux.Handle("POST /v1/admin/users/{id}/enable", r.admin(h.HandleEnable))
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	lenient := httpx.RateLimitByIP(r.RateLimits.Lenient)

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), lenient))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys), lenient))
	r.Mux.Handle("GET /.well-known/jwks.json", httpx.Chain(JWKSHandler(r.keys.KeySet), lenient))
}
