package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ladatajusta.ar/newsroom/internal/publish"
	"ladatajusta.ar/newsroom/internal/staging"
)

func (s *Server) handleListItems(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), 20, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	offset, err := parsePositiveInt(c.QueryParam("offset"), 0, 0, 1_000_000)
	if err != nil {
		return failValidation(c, map[string]string{"offset": err.Error()})
	}
	since, err := parseTimeFilter(c.QueryParam("since"))
	if err != nil {
		return failValidation(c, map[string]string{"since": err.Error()})
	}
	until, err := parseTimeFilter(c.QueryParam("until"))
	if err != nil {
		return failValidation(c, map[string]string{"until": err.Error()})
	}
	hasErrors, err := parseBoolFilter(c.QueryParam("has_errors"))
	if err != nil {
		return failValidation(c, map[string]string{"has_errors": err.Error()})
	}

	filter := staging.Filter{
		SourceMedia: strings.TrimSpace(c.QueryParam("source_media")),
		Language:    strings.TrimSpace(c.QueryParam("language")),
		Search:      strings.TrimSpace(c.QueryParam("q")),
		HasErrors:   hasErrors,
		Since:       since,
		Until:       until,
		Limit:       limit,
		Offset:      offset,
	}
	if raw := strings.TrimSpace(c.QueryParam("state")); raw != "" {
		state, err := staging.ParseState(raw)
		if err != nil {
			return failValidation(c, map[string]string{"state": err.Error()})
		}
		filter.State = state
	}

	items, total, err := s.store.List(c.Request().Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("list staging items failed")
		return internalError(c, "Failed to list items")
	}

	return success(c, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (s *Server) handleGetItem(c echo.Context) error {
	item, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondStagingError(c, err)
	}
	return success(c, item)
}

type updateItemRequest struct {
	State        *string `json:"state,omitempty"`
	StateMessage *string `json:"state_message,omitempty"`
	Automated    bool    `json:"automated,omitempty"`

	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Summary  *string `json:"summary,omitempty"`
	Content  *string `json:"content,omitempty"`

	AITitle                *string         `json:"ai_title,omitempty"`
	AISummary              *string         `json:"ai_summary,omitempty"`
	AITags                 json.RawMessage `json:"ai_tags,omitempty"`
	AICategory             *string         `json:"ai_category,omitempty"`
	AIModel                *string         `json:"ai_model,omitempty"`
	AIPromptVersion        *string         `json:"ai_prompt_version,omitempty"`
	AITokensUsed           *int            `json:"ai_tokens_used,omitempty"`
	AICostUSD              *float64        `json:"ai_cost_usd,omitempty"`
	AIProcessedAt          *time.Time      `json:"ai_processed_at,omitempty"`
	AIProcessingDurationMS *int            `json:"ai_processing_duration_ms,omitempty"`
	AIMetadata             json.RawMessage `json:"ai_metadata,omitempty"`

	LastError  *string `json:"last_error,omitempty"`
	ErrorTrace *string `json:"error_trace,omitempty"`

	ExtraMetadata json.RawMessage `json:"extra_metadata,omitempty"`
	UpdatedBy     string          `json:"updated_by,omitempty"`
}

func (s *Server) handleUpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "invalid JSON body"})
	}

	patch := staging.UpdatePatch{
		StateMessage:           req.StateMessage,
		Automated:              req.Automated,
		Title:                  req.Title,
		Subtitle:               req.Subtitle,
		Summary:                req.Summary,
		Content:                req.Content,
		AITitle:                req.AITitle,
		AISummary:              req.AISummary,
		AITags:                 req.AITags,
		AICategory:             req.AICategory,
		AIModel:                req.AIModel,
		AIPromptVersion:        req.AIPromptVersion,
		AITokensUsed:           req.AITokensUsed,
		AICostUSD:              req.AICostUSD,
		AIProcessedAt:          req.AIProcessedAt,
		AIProcessingDurationMS: req.AIProcessingDurationMS,
		AIMetadata:             req.AIMetadata,
		LastError:              req.LastError,
		ErrorTrace:             req.ErrorTrace,
		ExtraMetadata:          req.ExtraMetadata,
		UpdatedBy:              req.UpdatedBy,
	}
	if req.State != nil {
		state, err := staging.ParseState(strings.TrimSpace(*req.State))
		if err != nil {
			return failValidation(c, map[string]string{"state": err.Error()})
		}
		patch.State = &state
	}

	item, err := s.store.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return respondStagingError(c, err)
	}
	return success(c, item)
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	if err := s.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondStagingError(c, err)
	}
	return success(c, map[string]any{"deleted": true})
}

type publishItemRequest struct {
	PublishedBy     string  `json:"published_by"`
	SignedBy        *string `json:"signed_by,omitempty"`
	TitleOverride   *string `json:"title_override,omitempty"`
	SummaryOverride *string `json:"summary_override,omitempty"`
	SlugOverride    *string `json:"slug_override,omitempty"`
}

func (s *Server) handlePublishItem(c echo.Context) error {
	var req publishItemRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "invalid JSON body"})
	}
	if strings.TrimSpace(req.PublishedBy) == "" {
		return failValidation(c, map[string]string{"published_by": "must not be empty"})
	}

	pub, err := s.publisher.Publish(c.Request().Context(), publish.Request{
		ItemID:          c.Param("id"),
		PublishedBy:     req.PublishedBy,
		SignedBy:        req.SignedBy,
		TitleOverride:   req.TitleOverride,
		SummaryOverride: req.SummaryOverride,
		SlugOverride:    req.SlugOverride,
	})
	if err != nil {
		return respondStagingError(c, err)
	}
	return successWithStatus(c, http.StatusCreated, pub)
}

type markDuplicatesRequest struct {
	UpdatedBy string `json:"updated_by,omitempty"`
}

func (s *Server) handleMarkDuplicates(c echo.Context) error {
	var req markDuplicatesRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "invalid JSON body"})
	}

	marked, err := s.store.MarkDuplicates(c.Request().Context(), req.UpdatedBy)
	if err != nil {
		s.logger.Error().Err(err).Msg("mark duplicates failed")
		return internalError(c, "Failed to mark duplicates")
	}
	return success(c, map[string]any{"marked": marked})
}
