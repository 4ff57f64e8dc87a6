// Package server exposes the WPS operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/delta10/wpsd/internal/auth"
	"github.com/delta10/wpsd/internal/config"
	"github.com/delta10/wpsd/internal/jobs"
	"github.com/delta10/wpsd/internal/logs"
	"github.com/delta10/wpsd/internal/processes"
	"github.com/delta10/wpsd/internal/utils"
	"github.com/delta10/wpsd/internal/wps"
)

const (
	routeWPS    = "wps"
	routeJob    = "job"
	routeOutput = "output"
)

type Deps struct {
	Registry *processes.Registry
	Store    jobs.Store
	Fetcher  jobs.Fetcher
	Audit    logs.Auditor
	Auth     *auth.Authenticator
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

type Server struct {
	config   *config.Config
	registry *processes.Registry
	store    jobs.Store
	auth     *auth.Authenticator
	log      *slog.Logger
	manager  *jobs.Manager
	router   *mux.Router
	baseURL  *url.URL
}

func New(cfg *config.Config, deps Deps) (*Server, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse baseUrl: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		registry: deps.Registry,
		store:    deps.Store,
		auth:     deps.Auth,
		log:      deps.Logger,
		router:   mux.NewRouter(),
		baseURL:  baseURL,
	}

	s.router.HandleFunc("/wps", s.handleKVP).Methods(http.MethodGet).Name(routeWPS)
	s.router.HandleFunc("/wps", s.handleXML).Methods(http.MethodPost)
	s.router.HandleFunc("/wps/jobs/{job}", s.handleStatus).Methods(http.MethodGet).Name(routeJob)
	s.router.HandleFunc("/wps/outputs/{job}/{output}", s.handleOutput).Methods(http.MethodGet).Name(routeOutput)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeException(w, http.StatusNotFound, &wps.Error{Kind: wps.ErrOperationNotSupported, Locator: r.URL.Path})
	})
	s.router.Use(s.logRequests)

	s.manager = jobs.NewManager(deps.Registry, jobs.Options{
		Workers:         cfg.Limits.Workers,
		ServiceInstance: s.ServiceInstance(),
		URLs:            s,
		Store:           deps.Store,
		Fetcher:         deps.Fetcher,
		Audit:           deps.Audit,
		Logger:          deps.Logger,
		Now:             deps.Now,
		NewID:           deps.NewID,
	})
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Manager() *jobs.Manager { return s.manager }

// link resolves a named route against the public base URL.
func (s *Server) link(name string, pairs ...string) string {
	u, err := s.router.Get(name).URLPath(pairs...)
	if err != nil {
		s.log.Error("could not build url", "route", name, "error", err)
		return ""
	}
	return s.baseURL.JoinPath(u.Path).String()
}

func (s *Server) endpoint() string { return s.link(routeWPS) }

func (s *Server) ServiceInstance() string {
	return s.endpoint() + "?service=WPS&request=GetCapabilities"
}

func (s *Server) StatusURL(job string) string { return s.link(routeJob, "job", job) }

func (s *Server) OutputURL(job, output string) string {
	return s.link(routeOutput, "job", job, "output", output)
}

// Run serves until ctx is cancelled, then stops accepting requests and
// fails the jobs still running.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "address", s.config.ListenAddress, "baseUrl", s.config.BaseURL)
		if s.config.ListenTLS.Certificate != "" && s.config.ListenTLS.Key != "" {
			errc <- srv.ListenAndServeTLS(s.config.ListenTLS.Certificate, s.config.ListenTLS.Key)
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.manager.Close(shutdownCtx); err == nil {
		err = cerr
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"ip", utils.ReadUserIP(r),
			"duration", time.Since(start),
		)
	})
}
