package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListSessions(c echo.Context) error {
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}
	list, err := s.deps.Conversations.ListSessions(c.Request().Context(), c.QueryParam("visitor_id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetSession(c echo.Context) error {
	ctx := c.Request().Context()
	conv := s.deps.Conversations

	sess, err := conv.GetSession(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	messages, err := conv.Messages(ctx, sess.ID, 0)
	if err != nil {
		return err
	}
	memories, err := conv.Memories(ctx, sess.ID)
	if err != nil {
		return err
	}
	profile, err := conv.Profile(ctx, sess.VisitorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionDetail{
		Session:  sess,
		Messages: messages,
		Memories: memories,
		Profile:  profile,
	})
}

func (s *Server) handleEndSession(c echo.Context) error {
	sess, err := s.deps.Conversations.EndSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if err := s.deps.Conversations.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetProfile(c echo.Context) error {
	profile, err := s.deps.Conversations.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
