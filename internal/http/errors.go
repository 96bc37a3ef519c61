package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/assistant"
	"github.com/fyrsmithlabs/folio/internal/auth"
	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/documents"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/sanitize"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, conversation.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidReference),
		errors.Is(err, documents.ErrEmptyDocument),
		errors.Is(err, knowledge.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, documents.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, documents.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, cms.ErrValidation),
		errors.Is(err, cms.ErrInvalidDateRange),
		errors.Is(err, cms.ErrEmptyReorder),
		errors.Is(err, knowledge.ErrInvalidUpload),
		errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, assistant.ErrMessageTooLong),
		errors.Is(err, conversation.ErrEmptyMessage),
		errors.Is(err, conversation.ErrInvalidRole),
		errors.Is(err, sanitize.ErrInvalidVisitorID),
		errors.Is(err, sanitize.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrLoginDisabled):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// errorHandler writes domain errors as JSON. Internal errors are logged and
// answered with a generic message.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{RequestID: c.Response().Header().Get(echo.HeaderXRequestID)}
	status := http.StatusInternalServerError

	var he *echo.HTTPError
	var ve *cms.ValidationError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			resp.Error = msg
		} else {
			resp.Error = http.StatusText(status)
		}
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Error = cms.ErrValidation.Error()
		resp.Fields = ve.Fields
	default:
		status = statusFor(err)
		resp.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		s.log.Error(c.Request().Context(), "request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if he == nil {
			resp.Error = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", zap.Error(err))
	}
}
