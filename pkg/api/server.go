package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
	"github.com/rubiojr/pocketdiary/pkg/search"
	"github.com/rubiojr/pocketdiary/pkg/settings"
)

// Store is the persistence the API needs.
type Store interface {
	search.EntryStore
	GetEntry(ctx context.Context, day time.Time) (*core.Entry, error)
	PutEntry(ctx context.Context, e *core.Entry) error
	DeleteEntry(ctx context.Context, day time.Time) error
	CountEntries(ctx context.Context) (int, error)
}

type Server struct {
	store    Store
	searcher *search.Searcher
	settings *settings.Settings
	hub      *realtime.Hub
	loc      *time.Location
	logger   *log.Logger

	publishWrites bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWriteEvents controls whether writes made through the API publish change
// events. Turn it off when a file watcher already reports changes to the
// database, or every write reaches live searches twice.
func WithWriteEvents(enabled bool) ServerOption {
	return func(s *Server) { s.publishWrites = enabled }
}

// NewServer wires the API. A nil hub gets a private one; a nil loc means
// time.Local.
func NewServer(store Store, prefs *settings.Settings, hub *realtime.Hub, loc *time.Location, opts ...ServerOption) *Server {
	if hub == nil {
		hub = realtime.NewHub(0)
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		store:         store,
		searcher:      search.New(store, search.WithLocation(loc)),
		settings:      prefs,
		hub:           hub,
		loc:           loc,
		logger:        log.ForService("api"),
		publishWrites: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the change hub live searches listen on.
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// Handler returns the routed API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(CorsMiddleware(mux))
}

func (s *Server) publish(kind realtime.ChangeKind, day string) {
	if s.publishWrites {
		s.hub.Publish(realtime.NewChangeEvent(kind, day))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
