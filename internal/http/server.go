// Package http implements the authenticated JSON API.
//
// Every request walks the same state machine: preflight short-circuit,
// public-route check, token authorization, route-table dispatch, JSON
// envelope shaping. The route table is the exact method+path set of the API;
// anything else is a 404 envelope.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"nestegg/internal/amqp"
	"nestegg/internal/auth"
	"nestegg/internal/config"
	"nestegg/internal/rates"
	"nestegg/internal/storage"
)

// handlerFunc is an API handler. Returned errors are converted into JSON
// error envelopes by the dispatcher; handlers never write error responses
// themselves.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type Server struct {
	http.Server

	store     *storage.Repository
	auth      *auth.Authenticator
	refresher *rates.Refresher
	events    *amqp.Publisher // nil when eventing is disabled

	prefix      string
	routes      map[string]handlerFunc
	public      map[string]bool
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer wires the route table and middleware, returning a ready-to-run
// server.
func NewServer(addr string, cfg *config.Config, store *storage.Repository, authn *auth.Authenticator, refresher *rates.Refresher, events *amqp.Publisher) *Server {
	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		store:       store,
		auth:        authn,
		refresher:   refresher,
		events:      events,
		prefix:      strings.TrimSuffix(cfg.APIPrefix, "/"),
		rateLimiter: newRateLimiter(),
	}

	s.routes = map[string]handlerFunc{
		"POST /login":                  s.handleLogin,
		"GET /data":                    s.handleData,
		"POST /savings/add":            s.handleSavingsAdd,
		"POST /savings/update-goal":    s.handleSavingsUpdateGoal,
		"POST /savings/update-rate":    s.handleSavingsUpdateRate,
		"POST /savings/delete":         s.handleSavingsDelete,
		"POST /entertainment/recharge": s.handleEntertainmentRecharge,
		"POST /entertainment/expense":  s.handleEntertainmentExpense,
		"POST /entertainment/delete":   s.handleEntertainmentDelete,
		"GET /rates/update":            s.handleRatesUpdate,
	}
	// Reachable without a token: login has no credential yet, and the rate
	// refresh endpoint is hit by an external scheduler that has none.
	s.public = map[string]bool{
		"POST /login":       true,
		"GET /rates/update": true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/", s.dispatch)
	s.Handler = s.withRequestLog(mux)

	return s
}

// dispatch is the per-request state machine:
// preflight -> rate limit -> public route -> auth check -> route table -> handler.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	// Preflight bypasses auth entirely: empty 200 with CORS headers.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, s.prefix)
	if path == "" {
		path = "/"
	}
	key := r.Method + " " + path

	if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP(r)) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorEnvelope{Error: "rate limit exceeded"})
		return
	}

	// Auth comes before routing: without a valid token, callers cannot tell
	// which paths exist.
	if !s.public[key] {
		principal, err := s.auth.Authorize(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		r = r.WithContext(withPrincipal(r.Context(), principal))
	}

	handler, ok := s.routes[key]
	if !ok {
		writeNotFound(w, r)
		return
	}

	if err := handler(w, r); err != nil {
		writeError(w, r, err)
	}
}

// Shutdown gracefully shuts down the server and the rate limiter's cleanup
// goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or nil on public
// routes.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey{}).(*auth.Principal)
	return p
}
