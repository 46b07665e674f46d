package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleListPublications(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), 20, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	offset, err := parsePositiveInt(c.QueryParam("offset"), 0, 0, 1_000_000)
	if err != nil {
		return failValidation(c, map[string]string{"offset": err.Error()})
	}

	pubs, err := s.publisher.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("category")), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("list publications failed")
		return internalError(c, "Failed to list publications")
	}
	return success(c, map[string]any{"publications": pubs})
}

func (s *Server) handleGetPublication(c echo.Context) error {
	pub, err := s.publisher.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return respondStagingError(c, err)
	}
	return success(c, pub)
}
