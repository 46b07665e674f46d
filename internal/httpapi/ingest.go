package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxIngestBodyBytes = 8 * 1024 * 1024

func (s *Server) handleIngestOne(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxIngestBodyBytes))
	if err != nil {
		return failValidation(c, map[string]string{"body": "cannot read request body"})
	}

	result, err := s.gateway.IngestPayload(c.Request().Context(), payload, nil)
	if err != nil {
		// Store failures keep their taxonomy mapping; 422 is reserved for
		// payloads that fail validation.
		if isStoreError(err) {
			return respondStagingError(c, err)
		}
		return fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
	}

	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	return successWithStatus(c, status, result)
}

type ingestBatchRequest struct {
	SourceMedia string            `json:"source_media"`
	ScraperName string            `json:"scraper_name"`
	Articles    []json.RawMessage `json:"articles"`
}

func (s *Server) handleIngestBatch(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxIngestBodyBytes)

	var req ingestBatchRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "invalid JSON body"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.SourceMedia) == "" {
		fieldErrors["source_media"] = "must not be empty"
	}
	if strings.TrimSpace(req.ScraperName) == "" {
		fieldErrors["scraper_name"] = "must not be empty"
	}
	if len(req.Articles) == 0 {
		fieldErrors["articles"] = "must contain at least one payload"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	batch, err := s.gateway.IngestBatch(c.Request().Context(), req.SourceMedia, req.ScraperName, req.Articles)
	if err != nil {
		s.logger.Error().Err(err).Str("source_media", req.SourceMedia).Msg("batch ingest failed")
		return internalError(c, "Failed to ingest batch")
	}
	return successWithStatus(c, http.StatusCreated, batch)
}

func (s *Server) handleListRuns(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), 50, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	runs, err := s.gateway.ListRuns(c.Request().Context(), strings.TrimSpace(c.QueryParam("source_media")), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list scraping runs failed")
		return internalError(c, "Failed to list scraping runs")
	}
	return success(c, map[string]any{"runs": runs})
}
