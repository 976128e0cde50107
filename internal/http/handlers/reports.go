package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neo4j-contrib/dx-feedback-form/internal/feedback"
	"github.com/neo4j-contrib/dx-feedback-form/internal/http/response"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

type ReportHandler struct {
	log          *logger.Logger
	analyticsSvc *feedback.AnalyticsService
}

func NewReportHandler(log *logger.Logger, analyticsSvc *feedback.AnalyticsService) *ReportHandler {
	return &ReportHandler{
		log:          log.With("handler", "ReportHandler"),
		analyticsSvc: analyticsSvc,
	}
}

// GET /api/feedback/:project?date=2006-01-02
// Lists the project's feedback for the month containing date.
func (h *ReportHandler) ProjectFeedback(c *gin.Context) {
	project, ok := projectParam(c)
	if !ok {
		return
	}

	var ref time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		ref = parsed
	}

	rows, err := h.analyticsSvc.FeedbackByProject(c.Request.Context(), project, ref)
	if err != nil {
		h.log.Error("project feedback query failed", "project", project, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "storage_failure", err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/page/:id
// :id is the base64-encoded page URI, opaque to callers.
func (h *ReportHandler) PageFeedback(c *gin.Context) {
	encoded := c.Param("id")
	uri, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_page_id",
			errors.New("page id is not valid base64"))
		return
	}

	rows, err := h.analyticsSvc.PageFeedback(c.Request.Context(), string(uri))
	if err != nil {
		h.log.Error("page feedback query failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "storage_failure", err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/fire/:project
// Pages ranked by confidently-negative feedback.
func (h *ReportHandler) FireReport(c *gin.Context) {
	project, ok := projectParam(c)
	if !ok {
		return
	}

	rows, err := h.analyticsSvc.FireReport(c.Request.Context(), project)
	if err != nil {
		h.log.Error("fire report query failed", "project", project, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "storage_failure", err)
		return
	}
	response.RespondOK(c, rows)
}

func projectParam(c *gin.Context) (string, bool) {
	project := strings.TrimSpace(c.Param("project"))
	if project == "" {
		response.RespondError(c, http.StatusNotFound, "missing_project",
			errors.New("project path parameter is required"))
		return "", false
	}
	return translateProjectSlug(project), true
}

// Clients flatten "@graphapps/…" project names into a path-safe
// "@graphapps-…" slug; stored Project names keep the slash.
func translateProjectSlug(project string) string {
	return strings.Replace(project, "@graphapps-", "@graphapps/", 1)
}

func parseDate(raw string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
