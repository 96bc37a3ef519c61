package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/storage"
	"github.com/fyrsmithlabs/folio/internal/vectorstore"
)

func (s *Server) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	counts, err := s.deps.Status.Counts(ctx)
	if err != nil {
		return err
	}
	resp := StatusResponse{
		Version:      s.deps.Version,
		Counts:       counts,
		LLMAvailable: s.deps.Assistant.Available(),
		Collections:  []vectorstore.CollectionInfo{},
	}
	if s.deps.Vectors != nil {
		cols, err := s.deps.Vectors.ListCollections(ctx)
		if err != nil {
			s.logger.Warn("listing vector collections", zap.Error(err))
		} else {
			resp.Collections = cols
			resp.Chunks = countChunks(cols)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Case studies.

func (s *Server) handleListCaseStudies(c echo.Context) error {
	list, err := s.deps.CMS.ListCaseStudies(c.Request().Context(), c.QueryParam("published") == "true")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateCaseStudy(c echo.Context) error {
	var in cms.CaseStudyInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cs, err := s.deps.CMS.CreateCaseStudy(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cs)
}

func (s *Server) handleGetCaseStudy(c echo.Context) error {
	cs, err := s.deps.CMS.GetCaseStudy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (s *Server) handleUpdateCaseStudy(c echo.Context) error {
	var in cms.CaseStudyInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cs, err := s.deps.CMS.UpdateCaseStudy(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (s *Server) handleDeleteCaseStudy(c echo.Context) error {
	if err := s.deps.CMS.DeleteCaseStudy(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Timeline.

func (s *Server) handleCreateExperience(c echo.Context) error {
	var in cms.ExperienceInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	e, err := s.deps.CMS.CreateExperience(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleGetExperience(c echo.Context) error {
	e, err := s.deps.CMS.GetExperience(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleUpdateExperience(c echo.Context) error {
	var in cms.ExperienceInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	e, err := s.deps.CMS.UpdateExperience(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteExperience(c echo.Context) error {
	if err := s.deps.CMS.DeleteExperience(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Core values.

func (s *Server) handleCreateCoreValue(c echo.Context) error {
	var in cms.CoreValueInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	v, err := s.deps.CMS.CreateCoreValue(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *Server) handleGetCoreValue(c echo.Context) error {
	v, err := s.deps.CMS.GetCoreValue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleUpdateCoreValue(c echo.Context) error {
	var in cms.CoreValueInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	v, err := s.deps.CMS.UpdateCoreValue(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleDeleteCoreValue(c echo.Context) error {
	if err := s.deps.CMS.DeleteCoreValue(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Images.

func (s *Server) handleCreateImage(c echo.Context) error {
	var in cms.ImageInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	img, err := s.deps.CMS.CreateImage(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, img)
}

func (s *Server) handleGetImage(c echo.Context) error {
	img, err := s.deps.CMS.GetImage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (s *Server) handleUpdateImage(c echo.Context) error {
	var in cms.ImageInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	img, err := s.deps.CMS.UpdateImage(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (s *Server) handleDeleteImage(c echo.Context) error {
	if err := s.deps.CMS.DeleteImage(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleReorderImages(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := s.deps.CMS.ReorderImages(ctx, req.IDs); err != nil {
		return err
	}
	list, err := s.deps.CMS.ListImages(ctx, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// SEO and hero.

func (s *Server) handleListSeo(c echo.Context) error {
	list, err := s.deps.CMS.ListSeo(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleUpsertSeo(c echo.Context) error {
	var in cms.SeoInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	seo, err := s.deps.CMS.UpsertSeo(c.Request().Context(), c.Param("page"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, seo)
}

func (s *Server) handleDeleteSeo(c echo.Context) error {
	if err := s.deps.CMS.DeleteSeo(c.Request().Context(), c.Param("page")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateHero(c echo.Context) error {
	var in cms.HeroInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	hero, err := s.deps.CMS.UpdateHero(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hero)
}

// Contacts.

func (s *Server) handleListContacts(c echo.Context) error {
	list, err := s.deps.CMS.ListContacts(c.Request().Context(), storage.ContactStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetContact(c echo.Context) error {
	sub, err := s.deps.CMS.GetContact(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

func (s *Server) handleUpdateContact(c echo.Context) error {
	var req ContactStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := s.deps.CMS.UpdateContactStatus(ctx, id, req.Status); err != nil {
		return err
	}
	sub, err := s.deps.CMS.GetContact(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

func (s *Server) handleDeleteContact(c echo.Context) error {
	if err := s.deps.CMS.DeleteContact(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
