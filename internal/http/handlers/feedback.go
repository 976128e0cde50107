package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neo4j-contrib/dx-feedback-form/internal/feedback"
	"github.com/neo4j-contrib/dx-feedback-form/internal/http/response"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/apierr"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

type FeedbackHandler struct {
	log       *logger.Logger
	ingestSvc *feedback.IngestionService
}

func NewFeedbackHandler(log *logger.Logger, ingestSvc *feedback.IngestionService) *FeedbackHandler {
	return &FeedbackHandler{
		log:       log.With("handler", "FeedbackHandler"),
		ingestSvc: ingestSvc,
	}
}

// POST /feedback
// URL-encoded form body from the "was this page helpful" widget.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_body", err)
		return
	}

	sub, err := feedback.ParseSubmission(string(body), c.Request.Header)
	if err != nil {
		respondClassified(c, err)
		return
	}

	if err := h.ingestSvc.Submit(c.Request.Context(), sub); err != nil {
		if errors.Is(err, feedback.ErrDuplicateSubmission) {
			response.RespondError(c, http.StatusForbidden, "duplicate_submission", err)
			return
		}
		h.log.Error("feedback submit failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "storage_failure", err)
		return
	}
	response.RespondOK(c, gin.H{"accepted": true})
}

// respondClassified maps apierr-tagged failures onto their HTTP status
// and everything else onto a 500.
func respondClassified(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
}
