// Package server assembles the HTTP surface: public auth routes, the admin
// routes and any business routes mounted behind the authorization gate.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filippo.io/csrf"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/audit"
	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/cookie"
	"github.com/wolfeidau/moontravel/internal/login"
	"github.com/wolfeidau/moontravel/internal/models"
	"github.com/wolfeidau/moontravel/internal/password"
	"github.com/wolfeidau/moontravel/internal/store"
	"github.com/wolfeidau/moontravel/internal/telemetry"
	"github.com/wolfeidau/moontravel/internal/users"

	httpmiddleware "github.com/wolfeidau/moontravel/internal/http"
)

const msgRunning = "MoonTravel backend is running"

// Config is the runtime configuration of the server.
type Config struct {
	Environment   string
	SessionSecret []byte
	SessionTTL    time.Duration
	BcryptCost    int
	CORSOrigins   []string
	TrustProxy    bool
	Tracing       bool
}

// Server wires the auth core to its HTTP routes.
type Server struct {
	cfg       Config
	router    *mux.Router
	gate      *auth.Gate
	login     *login.Service
	users     *users.Service
	protect   *csrf.Protection
	observers []auth.DecisionObserver
}

// New creates the server. metrics is optional.
func New(cfg Config, stores store.Stores, metrics *telemetry.Metrics) (*Server, error) {
	if err := stores.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	sessions, err := auth.NewSessions(stores.Sessions, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(stores.Tokens)
	if err != nil {
		return nil, err
	}

	recorder := audit.NewRecorder(stores.Audit)

	s := &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		gate:    auth.NewGate(sessions, stores.Identities),
		protect: csrf.New(),
	}

	if metrics != nil {
		recorder.OnError = func(ctx context.Context, eventType models.EventType) {
			metrics.RecordAuditWriteError(ctx, string(eventType))
		}
		s.observers = append(s.observers, func(ctx context.Context, required models.Role, decision auth.Decision) {
			metrics.RecordDecision(ctx, string(required), decision.Outcome.String())
		})
	}

	s.login, err = login.NewService(login.Deps{
		Identities: stores.Identities,
		Hotels:     stores.Hotels,
		Hasher:     hasher,
		Sessions:   sessions,
		Tokens:     tokens,
		Audit:      recorder,
		Metrics:    metrics,
	})
	if err != nil {
		return nil, err
	}

	s.users, err = users.NewService(users.Deps{
		Identities: stores.Identities,
		Hotels:     stores.Hotels,
		Sessions:   sessions,
		Tokens:     tokens,
		Audit:      recorder,
	})
	if err != nil {
		return nil, err
	}

	for _, origin := range cfg.CORSOrigins {
		if err := s.protect.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}

	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteError(w, r, apierr.NotFound("Not found", nil))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteJSON(w, http.StatusMethodNotAllowed, httpmiddleware.ErrorResponse{Error: "Method not allowed"})
	})

	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteJSON(w, http.StatusOK, httpmiddleware.MessageResponse{Message: msgRunning})
	}).Methods(http.MethodGet)

	loginHandler := login.NewHandler(s.login, cookie.NewPolicy(s.cfg.Environment))
	s.router.HandleFunc("/v1/signup", loginHandler.Signup).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/login", loginHandler.Login).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/logout", loginHandler.Logout).Methods(http.MethodPost)

	admin := s.router.PathPrefix("/v1/users").Subrouter()
	admin.Use(mux.MiddlewareFunc(s.require(models.RoleAdmin)))
	users.NewHandler(s.users).Register(admin)
}

func (s *Server) require(role models.Role) func(http.Handler) http.Handler {
	return auth.RequireRole(s.gate, role, s.observers...)
}

// Mount registers handler for every path under prefix. Requests reach it only
// when the session's identity is active and holds role exactly; the principal
// is available through auth.PrincipalFromContext.
func (s *Server) Mount(role models.Role, prefix string, handler http.Handler) error {
	if !role.Valid() {
		return fmt.Errorf("cannot mount %s: unknown role %q", prefix, role)
	}
	if prefix == "" || prefix == "/" {
		return errors.New("mount prefix must not be the root")
	}

	s.router.PathPrefix(prefix).Handler(s.require(role)(handler))

	log.Debug().Str("prefix", prefix).Str("role", string(role)).Msg("Mounted gated handler")
	return nil
}

// Login exposes the signup and login flows, for seeding.
func (s *Server) Login() *login.Service {
	return s.login
}

// Handler returns the router wrapped in the transport middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router

	h = s.protect.Handler(h)

	// an empty origin list would make cors allow every origin
	if len(s.cfg.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(h)
	}
	h = gzhttp.GzipHandler(h)
	h = httpmiddleware.ClientIPMiddleware(s.cfg.TrustProxy)(h)
	h = httpmiddleware.RequestLogger(log.Logger)(h)

	if s.cfg.Tracing {
		h = otelhttp.NewHandler(h, "moontravel")
	}

	return h
}
