// internal/httpserver/server.go
//
// HTTP server wiring for the number guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/levels".
//   - Game endpoints: /game/new, /game/guess, /game/giveup, /game/state, /stats, /games/mine.
//   - Live round timer over websocket: /game/timer.
//
// Notes:
//   - Every request is bound to a player session through a signed cookie
//     (see session.go); the session owns the game engine.
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The websocket route sits outside the timeout/JSON middleware group.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/journal"
	"github.com/robalobadob/numberguess/internal/store"
)

// Options configures a Server. Zero values fall back to development defaults.
type Options struct {
	SessionSecret    string
	SessionTTL       time.Duration
	ClientOrigin     string
	DailySalt        string
	LeaderboardSlots int
	Production       bool

	// EngineOptions are applied to every new session's engine.
	EngineOptions []game.Option
	// Now is used for the daily challenge date.
	Now func() time.Time
	// TimerInterval is the websocket tick period.
	TimerInterval time.Duration
}

// Server bundles router, session store and the optional round journal.
type Server struct {
	r       *chi.Mux
	store   store.Store
	journal *journal.Journal
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
// j may be nil when no database is configured.
func New(st store.Store, j *journal.Journal, opts Options) *Server {
	if opts.SessionSecret == "" {
		opts.SessionSecret = "dev_secret_change_me"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 180 * 24 * time.Hour
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "local_dev_salt"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimerInterval <= 0 {
		opts.TimerInterval = time.Second
	}
	s := &Server{r: chi.NewRouter(), store: st, journal: j, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)               // add X-Request-ID
	s.r.Use(chimw.RealIP)                  // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))   // request-scoped zerolog logger
	s.r.Use(hlog.AccessHandler(accessLog)) // one log line per request
	s.r.Use(chimw.Recoverer)               // recover from panics
	s.r.Use(s.cors)                        // credentials-friendly CORS

	// Websocket timer: long-lived, so no handler timeout.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/game/timer", s.handleTimer)
	})

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"numberguess-go","endpoints":["/health","/levels","POST /game/new","POST /game/guess","POST /game/giveup","/game/state","/game/timer","/stats","/games/mine"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/levels", s.handleLevels)

		// Game endpoints; every player gets a cookie session.
		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Post("/game/new", s.handleNewGame)
			r.Post("/game/guess", s.handleGuess)
			r.Post("/game/giveup", s.handleGiveUp)
			r.Get("/game/state", s.handleState)
			r.Get("/stats", s.handleStats)
			r.Get("/games/mine", s.handleMine)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// accessLog writes one line per request through the request-scoped logger.
func accessLog(r *http.Request, status, size int, dur time.Duration) {
	hlog.FromRequest(r).Info().
		Str("reqId", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", dur).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- helpers -----------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
