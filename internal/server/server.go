// Package server exposes the box computation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/approxmvbb/internal/config"
	"github.com/philipparndt/approxmvbb/pkg/geometry"
	"github.com/philipparndt/approxmvbb/pkg/mvbb"
	"github.com/philipparndt/approxmvbb/pkg/report"
	"github.com/philipparndt/approxmvbb/version"
)

// Request is the body of POST /v1/oobb. Options left out fall back to the
// server configuration.
type Request struct {
	Points  [][3]float64    `json:"points"`
	Options *RequestOptions `json:"options,omitempty"`
}

// RequestOptions overrides individual parameters
type RequestOptions struct {
	Eps             *float64 `json:"eps,omitempty"`
	SampleSize      *int     `json:"sample_size,omitempty"`
	GridSize        *int     `json:"grid_size,omitempty"`
	DiameterLoops   *int     `json:"diameter_loops,omitempty"`
	GridSearchLoops *int     `json:"grid_search_loops,omitempty"`
	Seed            *uint64  `json:"seed,omitempty"`
}

func (o *RequestOptions) apply(opts *mvbb.Options) {
	if o == nil {
		return
	}
	if o.Eps != nil {
		opts.Eps = *o.Eps
	}
	if o.SampleSize != nil {
		opts.SampleSize = *o.SampleSize
	}
	if o.GridSize != nil {
		opts.GridSize = *o.GridSize
	}
	if o.DiameterLoops != nil {
		opts.DiameterLoops = *o.DiameterLoops
	}
	if o.GridSearchLoops != nil {
		opts.GridSearchLoops = *o.GridSearchLoops
	}
	if o.Seed != nil {
		opts.Seed = *o.Seed
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the HTTP API
type Server struct {
	cfg    config.Config
	logger *slog.Logger
	router *mux.Router
}

// New wires the routes
func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{cfg: cfg, logger: logger, router: mux.NewRouter()}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/oobb", s.handleOOBB).Methods(http.MethodPost)
	return s
}

// Handler returns the router behind the CORS middleware
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serving")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": version.GetFullVersion()})
}

// bytesPerPoint bounds the JSON size of one point generously
const bytesPerPoint = 80

// bodyOverhead leaves room for the options and surrounding syntax
const bodyOverhead = 4 << 10

// maxBodyBytes caps request bodies so that reading one stays proportional
// to the point limit
func (s *Server) maxBodyBytes() int64 {
	return int64(s.cfg.Server.MaxPoints)*bytesPerPoint + bodyOverhead
}

func (s *Server) handleOOBB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: errors.Newf("request body exceeds %d bytes", maxErr.Limit).Error(),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Points) > s.cfg.Server.MaxPoints {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: errors.Newf("%d points exceed the limit of %d", len(req.Points), s.cfg.Server.MaxPoints).Error(),
		})
		return
	}

	points := make([]geometry.Vector3, len(req.Points))
	for i, p := range req.Points {
		points[i] = geometry.NewVector3(p[0], p[1], p[2])
	}

	opts := s.cfg.Options(s.logger)
	req.Options.apply(&opts)

	res, err := mvbb.Compute(points, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mvbb.ErrDegenerateInput) || errors.Is(err, mvbb.ErrInvalidParameter) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Info("rejected request", "points", len(points), "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	summary := report.Summarize("request", points, res, time.Since(start))
	s.logger.Info("computed box", "points", len(points), "volume", summary.Volume, "elapsed", summary.Elapsed)
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
