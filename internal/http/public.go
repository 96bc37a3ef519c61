package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/assistant"
	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/logging"
)

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Version: s.deps.Version}
	if err := s.deps.Status.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetHero(c echo.Context) error {
	hero, err := s.deps.CMS.GetHero(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hero)
}

func (s *Server) handlePublishedCaseStudies(c echo.Context) error {
	list, err := s.deps.CMS.ListCaseStudies(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handlePublishedCaseStudy(c echo.Context) error {
	cs, err := s.deps.CMS.GetPublishedCaseStudy(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (s *Server) handleListExperience(c echo.Context) error {
	list, err := s.deps.CMS.ListExperience(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleListCoreValues(c echo.Context) error {
	list, err := s.deps.CMS.ListCoreValues(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleListImages(c echo.Context) error {
	list, err := s.deps.CMS.ListImages(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetSeo(c echo.Context) error {
	seo, err := s.deps.CMS.GetSeo(c.Request().Context(), c.Param("page"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, seo)
}

// handleContact accepts a contact form submission. Honeypot hits get the
// same 202 as real submissions.
func (s *Server) handleContact(c echo.Context) error {
	var in cms.ContactInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	if _, err := s.deps.CMS.SubmitContact(c.Request().Context(), in); err != nil && !errors.Is(err, cms.ErrSpam) {
		return err
	}
	return c.JSON(http.StatusAccepted, AcceptedResponse{Status: "received"})
}

func (s *Server) handleChat(c echo.Context) error {
	var req assistant.ChatRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx := logging.WithVisitorID(logging.WithSessionID(c.Request().Context(), req.SessionID), req.VisitorID)
	resp, err := s.deps.Assistant.Chat(ctx, req)
	if err != nil {
		return err
	}
	ctx = logging.WithVisitorID(logging.WithSessionID(ctx, resp.SessionID), resp.VisitorID)
	s.log.Debug(ctx, "chat reply",
		zap.Bool("fallback", resp.Fallback),
		zap.Int("sources", len(resp.Sources)),
		zap.Int("memories_used", resp.MemoriesUsed),
	)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tok, err := s.deps.Auth.Login(req.Password)
	if err != nil {
		s.logger.Warn("admin login rejected", zap.String("client_ip", c.RealIP()), zap.Error(err))
		return err
	}
	return c.JSON(http.StatusOK, tok)
}
