package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/globalassets/tracker-backend/internal/acquisition"
	"github.com/globalassets/tracker-backend/internal/models"
	"github.com/globalassets/tracker-backend/internal/notifications"
	"github.com/globalassets/tracker-backend/internal/repository"
)

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Server is the read surface for the presentation layer: cached series,
// run control, and status. It never blocks on an active run; run events are
// drained in the background and the latest result kept for polling.
type Server struct {
	store      *repository.Store
	svc        *acquisition.Service
	notify     *notifications.Sender
	httpServer *http.Server
	apiKey     string

	mu         sync.Mutex
	lastResult *models.AcquisitionResult
	lastErr    error
}

func NewServer(store *repository.Store, svc *acquisition.Service, notify *notifications.Sender, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		store:  store,
		svc:    svc,
		notify: notify,
		apiKey: apiKey,
	}

	mux := http.NewServeMux()

	// Cached series routes
	mux.HandleFunc("GET /v1/prices/{id}", s.handlePrices)
	mux.HandleFunc("GET /v1/rates/{code}", s.handleRates)
	mux.HandleFunc("GET /v1/fiats", s.handleFiats)

	// Run control routes
	mux.HandleFunc("POST /v1/runs", s.handleStartRun)
	mux.HandleFunc("POST /v1/runs/stop", s.handleStopRun)
	mux.HandleFunc("GET /v1/runs/status", s.handleRunStatus)
	mux.HandleFunc("GET /v1/runs/last", s.handleLastResult)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func parseDate(s string) (time.Time, bool) {
	if !dateRegexp.MatchString(s) {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseRange reads the start/end query params; end defaults to today and
// start to a year before end.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	end := models.Day(time.Now())
	if v := r.URL.Query().Get("end"); v != "" {
		d, ok := parseDate(v)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", v)
		}
		end = d
	}
	start := end.AddDate(-1, 0, 0)
	if v := r.URL.Query().Get("start"); v != "" {
		d, ok := parseDate(v)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", v)
		}
		start = d
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date is after end date")
	}
	return start, end, nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
