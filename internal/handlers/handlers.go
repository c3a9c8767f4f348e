// Package handlers exposes the thin HTTP surface over the debate
// engine: one synchronous validation endpoint, an event listing for
// streaming consumers, and health.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dev.veridex.engine/internal/debate"
	"dev.veridex.engine/internal/events"
	"dev.veridex.engine/internal/models"
)

// Validator runs one validation end to end.
type Validator interface {
	Run(ctx context.Context, req models.ValidationRequest) (*models.ValidationResult, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type eventsResponse struct {
	RunID  string         `json:"runId"`
	Events []events.Event `json:"events"`
}

// Handler wires the engine into gin routes.
type Handler struct {
	validator Validator
	reader    events.Reader
	logger    *zap.Logger
}

// New creates a handler. The reader may be nil when the sink cannot be
// read back; the events endpoint then reports 404.
func New(validator Validator, reader events.Reader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{validator: validator, reader: reader, logger: logger}
}

// Register attaches all routes.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1")
	v1.POST("/validations", h.createValidation)
	v1.GET("/validations/:runId/events", h.listEvents)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createValidation(c *gin.Context) {
	var req models.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.RunID == "" || req.ValidationID == "" || req.Idea == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "runId, validationId and idea are required"})
		return
	}

	result, err := h.validator.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, debate.ErrEmptyIdea) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("validation run failed",
			zap.String("run_id", req.RunID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "validation failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listEvents(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "event reader not configured"})
		return
	}

	runID := c.Param("runId")
	evs, err := h.reader.Events(c.Request.Context(), runID)
	if err != nil {
		h.logger.Error("event listing failed",
			zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read events"})
		return
	}
	c.JSON(http.StatusOK, eventsResponse{RunID: runID, Events: evs})
}
