package http

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/growersgate/gate/api/gate" // Swagger docs
	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/httpx"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

// Limits are the rate limit profiles applied by the router.
type Limits struct {
	General httpx.RateLimitConfig
	Login   httpx.RateLimitConfig
	Strict  httpx.RateLimitConfig
}

// DefaultLimits returns the package profiles, including environment overrides.
func DefaultLimits() Limits {
	return Limits{
		General: httpx.GeneralLimit,
		Login:   httpx.LoginLimit,
		Strict:  httpx.StrictLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	secrets      *jwtx.SecretSet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService     *service.TokenService
	AuthService      *service.AuthService
	PasswordService  *service.PasswordService
	TwoFactorService *service.TwoFactorService
	BootstrapService *service.BootstrapService

	Limits                Limits
	CORSAllowedOrigins    []string
	HideUnknownResetEmail bool
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix

	clientIP httpx.KeyExtractor
}

func NewRouter(secrets *jwtx.SecretSet, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		secrets:      secrets,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultLimits(),
	}
}

// ApplyRoutes registers every route. Set the exported fields first.
func (r *Router) ApplyRoutes() {
	r.clientIP = httpx.ClientIPKeyExtractor(r.TrustedProxies)
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(r.CORSAllowedOrigins),
		httpx.RateLimitByIP(r.Limits.General, r.clientIP),
	}

	// One limiter per profile so that attempts add up across the routes
	// sharing it.
	strictByUser := httpx.RateLimitByUser(r.Limits.Strict, r.clientIP)
	strictByIP := httpx.RateLimitByIP(r.Limits.Strict, r.clientIP)

	r.registerAuth(strictByUser)
	r.registerPassword(strictByIP)
	r.registerTwoFactor(strictByUser)
	r.registerBootstrap(strictByIP)
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Growers-Gate Authentication API
//	@version					0.1.0
//	@description				Registration, login with optional TOTP second factor, password reset and session tokens for the Growers-Gate marketplace.
//	@description
//	@description				Tokens are HS256 signed JWTs. Send them as "Authorization: Bearer {token}".
//
//	@BasePath					/
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session or challenge token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth(strictByUser httpx.Middleware) {
	h := &AuthHandler{Auth: r.AuthService, Tokens: r.TokenService}

	r.Mux.HandleFunc("POST /register", h.HandleRegister)

	// keyed by IP and the submitted email so one attacker cannot lock out
	// every account behind a shared address
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Login, r.clientIP, "email"),
		),
	)

	secondFactor := []string{jwtx.UseChallenge, jwtx.UseSession}
	r.Mux.Handle("POST /verify-2fa",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyTwoFactor),
			httpx.AuthnMiddleware(r.TokenService, secondFactor...),
			strictByUser,
		),
	)
	r.Mux.Handle("POST /verify-2fa/recovery",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyRecovery),
			httpx.AuthnMiddleware(r.TokenService, secondFactor...),
			strictByUser,
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.TokenService, jwtx.UseSession, jwtx.UseChallenge),
		),
	)
	r.Mux.Handle("POST /refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.AuthnMiddleware(r.TokenService, jwtx.UseSession),
		),
	)
	r.Mux.Handle("GET /dashboard",
		httpx.Chain(http.HandlerFunc(h.HandleDashboard),
			httpx.AuthnMiddleware(r.TokenService, jwtx.UseSession),
		),
	)
}

func (r *Router) registerPassword(strictByIP httpx.Middleware) {
	h := &PasswordHandler{
		Passwords:        r.PasswordService,
		HideUnknownEmail: r.HideUnknownResetEmail,
	}

	r.Mux.Handle("POST /forgot-password", httpx.Chain(http.HandlerFunc(h.HandleForgot), strictByIP))
	r.Mux.Handle("POST /reset-password", httpx.Chain(http.HandlerFunc(h.HandleReset), strictByIP))
	r.Mux.Handle("POST /change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			httpx.AuthnMiddleware(r.TokenService, jwtx.UseSession),
		),
	)
}

func (r *Router) registerTwoFactor(strictByUser httpx.Middleware) {
	h := &TwoFactorHandler{TwoFactor: r.TwoFactorService}
	session := httpx.AuthnMiddleware(r.TokenService, jwtx.UseSession)

	r.Mux.Handle("GET /2fa/setup", httpx.Chain(http.HandlerFunc(h.HandleSetup), session))
	r.Mux.Handle("GET /2fa/qr", httpx.Chain(http.HandlerFunc(h.HandleQRCode), session))

	// these take a TOTP code, so guesses are limited per user
	r.Mux.Handle("POST /2fa/enable", httpx.Chain(http.HandlerFunc(h.HandleEnable), session, strictByUser))
	r.Mux.Handle("POST /2fa/disable", httpx.Chain(http.HandlerFunc(h.HandleDisable), session, strictByUser))
	r.Mux.Handle("POST /2fa/recovery-codes", httpx.Chain(http.HandlerFunc(h.HandleRecoveryCodes), session, strictByUser))
}

func (r *Router) registerBootstrap(strictByIP httpx.Middleware) {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /bootstrap", httpx.Chain(h, strictByIP))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.secrets))
}
