// Package statsserver exposes mailbox stats and Prometheus metrics over HTTP.
package statsserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// StatsFunc returns a JSON-encodable snapshot. It is called from HTTP
// handler goroutines and must be safe for that.
type StatsFunc func() any

// Server serves /healthz, /stats and /metrics.
type Server struct {
	server *http.Server
	addr   net.Addr
	log    logrus.FieldLogger
}

// New builds the server. gatherer may be nil, in which case /metrics is
// not registered.
func New(addr string, stats StatsFunc, gatherer prometheus.Gatherer, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/stats", func(c *gin.Context) {
		if stats == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stats source"})
			return
		}
		c.JSON(http.StatusOK, stats())
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log.WithField("component", "statsserver"),
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listen address and serves in the background until ctx
// is done, then shuts down. A bind failure is returned, not logged.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "statsserver: listen %s", s.server.Addr)
	}
	s.addr = ln.Addr()
	s.log.WithField("addr", s.addr.String()).Info("stats server listening")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("stats server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("stats server shutdown")
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded, nil before.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Wrap(s.server.Shutdown(ctx), "statsserver: shutdown")
}
