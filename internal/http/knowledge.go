package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/documents"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

// handleUploadDocument ingests the multipart "file" field. A document that
// was stored but failed processing is returned with 422 so the client can
// see the recorded error.
func (s *Server) handleUploadDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: multipart field \"file\" is required", knowledge.ErrInvalidUpload)
	}
	if s.maxDoc > 0 && fh.Size > s.maxDoc {
		return fmt.Errorf("%w: %d bytes exceeds %d", documents.ErrTooLarge, fh.Size, s.maxDoc)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if s.maxDoc > 0 {
		r = io.LimitReader(f, s.maxDoc+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	if s.maxDoc > 0 && int64(len(data)) > s.maxDoc {
		return fmt.Errorf("%w: upload exceeds %d bytes", documents.ErrTooLarge, s.maxDoc)
	}

	doc, err := s.deps.Knowledge.Ingest(c.Request().Context(), knowledge.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		if doc.ID != "" && doc.Status == storage.DocumentFailed {
			s.logger.Warn("document processing failed",
				zap.String("document_id", doc.ID), zap.Error(err))
			return c.JSON(http.StatusUnprocessableEntity, doc)
		}
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(c echo.Context) error {
	list, err := s.deps.Knowledge.List(c.Request().Context(), storage.DocumentStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleSearchKnowledge(c echo.Context) error {
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}
	results, err := s.deps.Knowledge.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleGetDocument(c echo.Context) error {
	doc, err := s.deps.Knowledge.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleReprocessDocument(c echo.Context) error {
	doc, err := s.deps.Knowledge.Reprocess(c.Request().Context(), c.Param("id"))
	if err != nil {
		if doc.ID != "" && doc.Status == storage.DocumentFailed {
			return c.JSON(http.StatusUnprocessableEntity, doc)
		}
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	if err := s.deps.Knowledge.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}
