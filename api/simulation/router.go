// Package simulation exposes the dispatch service over HTTP.
package simulation

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/cavusmuhammed68/ICC-IEEE/app"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
)

// Server holds the handler dependencies.
type Server struct {
	svc    *app.Service
	eco    eco.Store
	factor float64
	token  string
	log    logger.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithEcoStore enables GET /api/v1/kpi/eco over store.
func WithEcoStore(store eco.Store, factor float64) Option {
	return func(s *Server) {
		s.eco = store
		s.factor = factor
	}
}

// WithToken protects the run history with a bearer token.
func WithToken(token string) Option { return func(s *Server) { s.token = token } }

// NewServer creates a Server over svc.
func NewServer(svc *app.Service, opts ...Option) *Server {
	s := &Server{svc: svc, log: logger.New("api")}
	if cfg := svc.Config(); cfg != nil {
		s.token = cfg.API.Token
		s.factor = cfg.Metrics.EmissionFactor
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger())
	router.Use(ErrorHandler())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/dispatch", s.Dispatch)
		api.POST("/recovery", s.Recovery)
		api.GET("/runs", s.requireToken(), s.Runs)
		if s.eco != nil {
			api.GET("/kpi/eco", s.EcoKPI)
		}
	}
	router.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return router
}

// Handler wraps the router with CORS for the allowed origins.
func (s *Server) Handler() http.Handler {
	origins := []string{"*"}
	if cfg := s.svc.Config(); cfg != nil && len(cfg.API.AllowedOrigins) > 0 {
		origins = cfg.API.AllowedOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.Router())
}

// ErrorHandler turns handler panics into the error envelope.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		msg := "an unexpected error occurred"
		if str, ok := recovered.(string); ok {
			msg = str
		}
		abortError(c, http.StatusInternalServerError, "INTERNAL_ERROR", msg)
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debugw("request", map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token != "" && c.GetHeader("Authorization") != "Bearer "+s.token {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}
		c.Next()
	}
}

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}
