package api

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/api/handlers"
	"github.com/Togather-Foundation/booking/internal/api/middleware"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/jsonld"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/realtime"
)

// UserService is the account service as the router needs it: the handler
// operations plus resolving a token subject into the caller.
type UserService interface {
	handlers.UserService
	middleware.UserResolver
}

type Services struct {
	Users      UserService
	DJs        handlers.DJService
	Financials handlers.FinancialsService
	Events     handlers.EventService
	Contracts  handlers.ContractService
	Producers  handlers.ProducerService
	Media      handlers.MediaService
	Dashboard  handlers.DashboardService
}

// Deps is everything NewRouter wires together. Hub and MCP are optional.
type Deps struct {
	Config     config.Config
	Logger     zerolog.Logger
	JWT        *auth.JWTManager
	Services   Services
	Serializer *jsonld.Serializer
	Location   *time.Location
	Hub        *realtime.Hub
	Health     *handlers.HealthChecker
	MCP        http.Handler

	Version   string
	GitCommit string
	BuildDate string
}

const apiPrefix = "/api/v1"

func NewRouter(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	env := cfg.Environment
	if deps.JWT == nil {
		return nil, fmt.Errorf("router: jwt manager is required")
	}
	if deps.Services.Users == nil {
		return nil, fmt.Errorf("router: user service is required")
	}
	keys, err := auth.DeriveKeys([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("router: derive csrf key: %w", err)
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	svc := deps.Services

	limit := middleware.RateLimit(cfg.RateLimit, env)
	tier := func(t middleware.RateLimitTier, h http.Handler) http.Handler {
		return middleware.WithRateLimitTierHandler(t)(limit(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(env)(h)
	}
	adminOnly := func(h http.Handler) http.Handler {
		return middleware.RequireRole(env, auth.RoleAdmin)(h)
	}

	authH := handlers.NewAuthHandler(svc.Users, cfg.Auth.CookieSecure, env)
	djsH := handlers.NewDJsHandler(svc.DJs, svc.Financials, loc, env)
	eventsH := handlers.NewEventsHandler(svc.Events, svc.DJs, svc.Producers, deps.Serializer, loc, cfg.Server.BaseURL, env)
	contractsH := handlers.NewContractsHandler(svc.Contracts, env)
	producersH := handlers.NewProducersHandler(svc.Producers, env)
	mediaH := handlers.NewMediaHandler(svc.Media, env)
	dashboardH := handlers.NewDashboardHandler(svc.Dashboard, env)
	adminUsersH := handlers.NewAdminUsersHandler(svc.Users, env)

	api := http.NewServeMux()
	route := func(pattern string, t middleware.RateLimitTier, byMethod map[string]http.Handler) {
		api.Handle(apiPrefix+pattern, tier(t, methodMux(byMethod)))
	}

	route("/openapi.json", middleware.TierPublic, map[string]http.Handler{http.MethodGet: OpenAPIHandler("json")})
	route("/openapi.yaml", middleware.TierPublic, map[string]http.Handler{http.MethodGet: OpenAPIHandler("yaml")})

	route("/auth/signup", middleware.TierLogin, map[string]http.Handler{http.MethodPost: http.HandlerFunc(authH.SignUp)})
	route("/auth/login", middleware.TierLogin, map[string]http.Handler{http.MethodPost: http.HandlerFunc(authH.Login)})
	route("/auth/logout", middleware.TierAPI, map[string]http.Handler{http.MethodPost: http.HandlerFunc(authH.Logout)})
	route("/auth/me", middleware.TierAPI, map[string]http.Handler{http.MethodGet: authed(authH.Me)})
	route("/auth/csrf", middleware.TierAPI, map[string]http.Handler{http.MethodGet: http.HandlerFunc(authH.CSRF)})

	route("/djs", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:  authed(djsH.List),
		http.MethodPost: authed(djsH.Create),
	})
	route("/djs/stats", middleware.TierAPI, map[string]http.Handler{http.MethodGet: authed(djsH.Stats)})
	route("/djs/{id}", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:    authed(djsH.Get),
		http.MethodPut:    authed(djsH.Update),
		http.MethodDelete: authed(djsH.Delete),
	})
	route("/djs/{id}/calendar", middleware.TierAPI, map[string]http.Handler{http.MethodGet: authed(djsH.Calendar)})
	route("/djs/{id}/financials", middleware.TierAPI, map[string]http.Handler{http.MethodGet: authed(djsH.Financials)})

	route("/events", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:  authed(eventsH.List),
		http.MethodPost: authed(eventsH.Create),
	})
	route("/events/{id}", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:    authed(eventsH.Get),
		http.MethodPut:    authed(eventsH.Update),
		http.MethodDelete: authed(eventsH.Delete),
	})

	route("/contracts", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:  authed(contractsH.List),
		http.MethodPost: authed(contractsH.Create),
	})
	route("/contracts/{id}", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet: authed(contractsH.Get),
		http.MethodPut: authed(contractsH.Update),
	})
	route("/contracts/{id}/sign", middleware.TierAPI, map[string]http.Handler{http.MethodPost: authed(contractsH.Sign)})

	route("/producers", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:  authed(producersH.List),
		http.MethodPost: authed(producersH.Create),
	})
	route("/producers/{id}", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:    authed(producersH.Get),
		http.MethodPut:    authed(producersH.Update),
		http.MethodDelete: authed(producersH.Delete),
	})
	route("/producers/{id}/access-code", middleware.TierAdmin, map[string]http.Handler{http.MethodPost: adminOnly(http.HandlerFunc(producersH.AccessCode))})

	route("/media", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet:  authed(mediaH.List),
		http.MethodPost: authed(mediaH.Create),
	})
	route("/media/{id}", middleware.TierAPI, map[string]http.Handler{http.MethodDelete: authed(mediaH.Delete)})

	route("/dashboard", middleware.TierAPI, map[string]http.Handler{http.MethodGet: authed(dashboardH.Get)})
	route("/stats/platform", middleware.TierAdmin, map[string]http.Handler{http.MethodGet: adminOnly(http.HandlerFunc(dashboardH.PlatformStats))})

	route("/admin/users", middleware.TierAdmin, map[string]http.Handler{http.MethodGet: adminOnly(http.HandlerFunc(adminUsersH.List))})
	route("/admin/users/{id}/role", middleware.TierAdmin, map[string]http.Handler{http.MethodPut: adminOnly(http.HandlerFunc(adminUsersH.UpdateRole))})

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = deps.Hub
	}
	route("/stream", middleware.TierAPI, map[string]http.Handler{
		http.MethodGet: middleware.RequireAuth(env)(handlers.NewStreamHandler(hub, cfg.Realtime.Heartbeat, env)),
	})

	if deps.MCP != nil {
		// Streamable HTTP uses POST for calls and GET/DELETE for sessions.
		api.Handle(apiPrefix+"/mcp", tier(middleware.TierAdmin, adminOnly(deps.MCP)))
	}

	session := chain(routed(api),
		middleware.Authenticate(deps.JWT, svc.Users, env),
		middleware.CSRFProtection(keys.CSRF, cfg.Auth.CookieSecure, trustedHosts(cfg.CORS.AllowedOrigins), env),
		middleware.ContentNegotiation,
	)

	root := http.NewServeMux()
	root.Handle("/healthz", handlers.Healthz())
	if deps.Health != nil {
		root.Handle("/readyz", deps.Health.Readyz())
		root.Handle("/health", deps.Health.Health())
	}
	root.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))
	root.Handle("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	root.Handle(apiPrefix+"/", session)

	return chain(routed(root),
		middleware.Tracing,
		middleware.CorrelationID(deps.Logger),
		middleware.ClientAddress(cfg.RateLimit.TrustedProxyCIDRs),
		middleware.RequestLogging,
		metrics.HTTPMiddleware,
		middleware.SecurityHeaders(cfg.Auth.CookieSecure),
		middleware.CORS(cfg.CORS, deps.Logger),
		middleware.RequestSize(middleware.DefaultMaxBodySize),
	), nil
}

// chain wraps h so the first middleware listed runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// routed records the matched pattern for the metrics route label. The
// inner API mux overwrites the outer "/api/v1/" match.
func routed(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			metrics.SetRoute(r.Context(), pattern)
		}
		mux.ServeHTTP(w, r)
	})
}

// trustedHosts turns CORS origins into the host names gorilla/csrf
// compares the Origin and Referer against.
func trustedHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, origin := range origins {
		u, err := url.Parse(strings.TrimSpace(origin))
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// methodMux dispatches on r.Method. HEAD falls back to the GET handler;
// anything else unregistered is a 405 with an Allow header.
func methodMux(byMethod map[string]http.Handler) http.Handler {
	allow := allowedMethods(byMethod)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := byMethod[r.Method]
		if !ok && r.Method == http.MethodHead {
			h, ok = byMethod[http.MethodGet]
		}
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func allowedMethods(byMethod map[string]http.Handler) string {
	methods := make([]string, 0, len(byMethod)+1)
	for method := range byMethod {
		methods = append(methods, method)
	}
	if _, ok := byMethod[http.MethodGet]; ok {
		if _, ok := byMethod[http.MethodHead]; !ok {
			methods = append(methods, http.MethodHead)
		}
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
