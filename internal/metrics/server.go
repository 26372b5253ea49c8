package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/latoulicious/Reactor/pkg/database"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotFunc reports the live session state for the health endpoint
type SnapshotFunc func() reactor.Snapshot

// JobSource reports scheduled jobs
type JobSource interface {
	Jobs() []string
	Schedule(name string) string
	NextRun(name string) time.Time
	IsRunning(name string) bool
}

// ActivitySource reads the activity log
type ActivitySource interface {
	Stats(ctx context.Context) (map[string]database.OperationStats, error)
	Recent(ctx context.Context, limit int) ([]reactor.Activity, error)
}

// Health holds what the health and activity endpoints report. Nil fields
// are left out.
type Health struct {
	Snapshot   SnapshotFunc
	HistoryLen func() int
	Jobs       JobSource
	Activity   ActivitySource
}

type jobStatus struct {
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	Running  bool      `json:"running"`
}

type healthBody struct {
	Status      string               `json:"status"`
	Session     string               `json:"session"`
	ChannelID   string               `json:"channel_id,omitempty"`
	UndoEntries *int                 `json:"undo_entries,omitempty"`
	Jobs        map[string]jobStatus `json:"jobs,omitempty"`
}

type activityBody struct {
	Stats  map[string]database.OperationStats `json:"stats"`
	Recent []reactor.Activity                 `json:"recent"`
}

// NewRouter serves /metrics, /healthz and, with an activity source, /activity
func NewRouter(c *Collector, health Health) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, health.body())
	})
	if health.Activity != nil {
		r.Get("/activity", func(w http.ResponseWriter, req *http.Request) {
			stats, err := health.Activity.Stats(req.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			recent, err := health.Activity.Recent(req.Context(), 20)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, activityBody{Stats: stats, Recent: recent})
		})
	}
	return r
}

func (h Health) body() healthBody {
	body := healthBody{Status: "ok", Session: reactor.Idle.String()}
	if h.Snapshot != nil {
		s := h.Snapshot()
		body.Session = s.State.String()
		if s.State == reactor.Armed {
			body.ChannelID = s.ChannelID
		}
	}
	if h.HistoryLen != nil {
		n := h.HistoryLen()
		body.UndoEntries = &n
	}
	if h.Jobs != nil {
		body.Jobs = make(map[string]jobStatus)
		for _, name := range h.Jobs.Jobs() {
			body.Jobs[name] = jobStatus{
				Schedule: h.Jobs.Schedule(name),
				NextRun:  h.Jobs.NextRun(name),
				Running:  h.Jobs.IsRunning(name),
			}
		}
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Server runs the metrics router until Shutdown
type Server struct {
	http   *http.Server
	logger logging.Logger
}

// NewServer creates a server listening on addr
func NewServer(addr string, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With(logging.String("component", "metrics_server")),
	}
}

// Start listens in the background
func (s *Server) Start() {
	go func() {
		s.logger.Info("Metrics server listening", logging.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server stopped", logging.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
