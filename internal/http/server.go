// Package http serves the folio REST API: public portfolio content, the
// contact form, the chat assistant and the admin API.
package http

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/folio/internal/assistant"
	"github.com/fyrsmithlabs/folio/internal/auth"
	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/config"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/logging"
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

// StatusSource reports database health and table sizes.
type StatusSource interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (storage.Counts, error)
}

// CollectionLister lists vector store collections.
type CollectionLister interface {
	ListCollections(ctx context.Context) ([]vectorstore.CollectionInfo, error)
}

// Deps are the services behind the API. Vectors is optional.
type Deps struct {
	CMS           *cms.Service
	Knowledge     *knowledge.Processor
	Conversations *conversation.Manager
	Assistant     *assistant.Assistant
	Auth          *auth.Authenticator
	Status        StatusSource
	Vectors       CollectionLister
	Version       string
}

func (d Deps) validate() error {
	switch {
	case d.CMS == nil:
		return errors.New("cms service is required")
	case d.Knowledge == nil:
		return errors.New("knowledge processor is required")
	case d.Conversations == nil:
		return errors.New("conversation manager is required")
	case d.Assistant == nil:
		return errors.New("assistant is required")
	case d.Auth == nil:
		return errors.New("authenticator is required")
	case d.Status == nil:
		return errors.New("status source is required")
	}
	return nil
}

// Server provides the folio HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	deps    Deps
	cfg     config.ServerConfig
	contact config.ContactConfig
	maxDoc  int64
	logger  *zap.Logger
	log     *logging.Logger
}

// requestValidator adapts go-playground/validator to echo.
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return cms.ValidationFailure(err)
	}
	return nil
}

// NewServer builds the echo instance and registers every route.
func NewServer(cfg *config.Config, deps Deps, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	v, err := cms.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: v}

	s := &Server{
		echo:    e,
		deps:    deps,
		cfg:     cfg.Server,
		contact: cfg.Contact,
		maxDoc:  cfg.Knowledge.MaxUploadBytes,
		logger:  logger,
		log:     logging.Wrap(logger),
	}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")

	content := v1.Group("/content")
	content.GET("/hero", s.handleGetHero)
	content.GET("/case-studies", s.handlePublishedCaseStudies)
	content.GET("/case-studies/:slug", s.handlePublishedCaseStudy)
	content.GET("/timeline", s.handleListExperience)
	content.GET("/core-values", s.handleListCoreValues)
	content.GET("/images", s.handleListImages)
	content.GET("/seo/:page", s.handleGetSeo)

	v1.POST("/contact", s.handleContact, s.contactLimiter())
	v1.POST("/chat", s.handleChat)
	v1.POST("/auth/login", s.handleLogin)

	admin := v1.Group("/admin", s.deps.Auth.Middleware())
	admin.GET("/status", s.handleStatus)

	admin.GET("/case-studies", s.handleListCaseStudies)
	admin.POST("/case-studies", s.handleCreateCaseStudy)
	admin.GET("/case-studies/:id", s.handleGetCaseStudy)
	admin.PUT("/case-studies/:id", s.handleUpdateCaseStudy)
	admin.DELETE("/case-studies/:id", s.handleDeleteCaseStudy)

	admin.GET("/timeline", s.handleListExperience)
	admin.POST("/timeline", s.handleCreateExperience)
	admin.GET("/timeline/:id", s.handleGetExperience)
	admin.PUT("/timeline/:id", s.handleUpdateExperience)
	admin.DELETE("/timeline/:id", s.handleDeleteExperience)

	admin.GET("/core-values", s.handleListCoreValues)
	admin.POST("/core-values", s.handleCreateCoreValue)
	admin.GET("/core-values/:id", s.handleGetCoreValue)
	admin.PUT("/core-values/:id", s.handleUpdateCoreValue)
	admin.DELETE("/core-values/:id", s.handleDeleteCoreValue)

	admin.GET("/images", s.handleListImages)
	admin.POST("/images", s.handleCreateImage)
	admin.POST("/images/reorder", s.handleReorderImages)
	admin.GET("/images/:id", s.handleGetImage)
	admin.PUT("/images/:id", s.handleUpdateImage)
	admin.DELETE("/images/:id", s.handleDeleteImage)

	admin.GET("/seo", s.handleListSeo)
	admin.GET("/seo/:page", s.handleGetSeo)
	admin.PUT("/seo/:page", s.handleUpsertSeo)
	admin.DELETE("/seo/:page", s.handleDeleteSeo)

	admin.GET("/hero", s.handleGetHero)
	admin.PUT("/hero", s.handleUpdateHero)

	admin.GET("/contacts", s.handleListContacts)
	admin.GET("/contacts/:id", s.handleGetContact)
	admin.PATCH("/contacts/:id", s.handleUpdateContact)
	admin.DELETE("/contacts/:id", s.handleDeleteContact)

	admin.POST("/knowledge", s.handleUploadDocument)
	admin.GET("/knowledge", s.handleListDocuments)
	admin.GET("/knowledge/search", s.handleSearchKnowledge)
	admin.GET("/knowledge/:id", s.handleGetDocument)
	admin.POST("/knowledge/:id/reprocess", s.handleReprocessDocument)
	admin.DELETE("/knowledge/:id", s.handleDeleteDocument)

	admin.GET("/sessions", s.handleListSessions)
	admin.GET("/sessions/:id", s.handleGetSession)
	admin.POST("/sessions/:id/end", s.handleEndSession)
	admin.DELETE("/sessions/:id", s.handleDeleteSession)
	admin.GET("/visitors/:id/profile", s.handleGetProfile)
}

// requestLogger tags the request context with its request id and logs one
// line per request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		s.log.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// contactLimiter throttles the contact form per client IP.
func (s *Server) contactLimiter() echo.MiddlewareFunc {
	perMinute := s.contact.RatePerMinute
	if perMinute <= 0 {
		perMinute = 3
	}
	burst := s.contact.Burst
	if burst <= 0 {
		burst = int(perMinute)
		if burst < 1 {
			burst = 1
		}
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perMinute / 60),
		Burst:     burst,
		ExpiresIn: 10 * time.Minute,
	})
	retryAfter := strconv.Itoa(int(math.Ceil(60 / perMinute)))
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Info("contact form rate limited", zap.String("client_ip", identifier))
			c.Response().Header().Set("Retry-After", retryAfter)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many submissions, try again later")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start listens on Addr until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
