// Package server exposes the advisor over HTTP using gin.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/database"
	"github.com/edgard/intillasense/internal/logger"
	"github.com/edgard/intillasense/internal/recommend"
)

// Deps are the collaborators of the HTTP server. Store may be nil, in
// which case /healthz reports the database as disabled.
type Deps struct {
	Logger  *zap.Logger
	Config  config.ServerConfig
	Service *recommend.Service
	Store   database.Store
}

// Server routes HTTP requests to the recommendation service.
type Server struct {
	log     *zap.Logger
	cfg     config.ServerConfig
	service *recommend.Service
	store   database.Store
	clock   *clock
	engine  *gin.Engine
}

// New builds the router. gin's mode is left to the caller.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:     log.Named("server"),
		cfg:     deps.Config,
		service: deps.Service,
		store:   deps.Store,
		clock:   newClock(),
	}

	r := gin.New()
	r.Use(requestID(), logger.GinMiddleware(log), gin.Recovery(), limitBody(deps.Config.MaxBodyBytes))

	r.GET("/time", s.handleTime)
	r.GET("/user_chatbot_request", s.handleChatQuery)
	r.POST("/user_chatbot_request", s.handleChatBody)
	r.GET("/farms", s.handleFarms)
	r.GET("/healthz", s.handleHealth)

	s.engine = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HTTPServer returns an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.log),
	}
}

// clock reports wall time that never goes backwards within the process.
type clock struct {
	start time.Time
}

func newClock() *clock {
	return &clock{start: time.Now()}
}

// Now returns the start wall time advanced by the monotonic elapsed time.
func (c *clock) Now() time.Time {
	return c.start.Round(0).Add(time.Since(c.start))
}
