// Package server exposes the localization pipeline over HTTP: a multipart
// localize endpoint, health and metrics, and a websocket stream for batch
// jobs over server-side assets.
package server

import (
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rasterloc/rasterloc/internal/pipeline"
	"github.com/rasterloc/rasterloc/internal/qe"
	"github.com/rasterloc/rasterloc/internal/translator"
	"github.com/rasterloc/rasterloc/internal/version"
)

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64

	Source     language.Tag
	Target     language.Tag
	Translator translator.Config
	QE         qe.Config
	RunLogPath string
}

// Server holds the HTTP server state and dependencies. The translator is
// shared across requests; font handles are per request, each canvas has a
// single owner.
type Server struct {
	translator     translator.Translator
	cfg            Config
	corsOrigin     string
	maxUploadBytes int64
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// LocalizeResponse is the JSON form of a localize result.
type LocalizeResponse struct {
	Success bool   `json:"success"`
	Strings int    `json:"strings,omitempty"`
	Target  string `json:"target,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewServer creates a localization server instance.
func NewServer(cfg Config) (*Server, error) {
	tr, err := translator.New(cfg.Translator)
	if err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	return &Server{
		translator:     tr,
		cfg:            cfg,
		corsOrigin:     cfg.CORSOrigin,
		maxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}

// newLocalizer builds a per-job pipeline writing into dir. Each job gets its
// own font handle.
func (s *Server) newLocalizer(dir string) (*pipeline.Localizer, error) {
	return pipeline.NewBuilder().
		WithTranslator(s.translator).
		WithLanguages(s.cfg.Source, s.cfg.Target).
		WithQE(s.cfg.QE).
		WithRunLog(s.cfg.RunLogPath).
		WithOutputDir(dir).
		Build()
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/localize", s.corsMiddleware(s.localizeHandler))
	mux.HandleFunc("/ws/batch", s.batchWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// versionString is split out so the handler stays testable with build
// defaults.
func versionString() string {
	return version.Version
}
