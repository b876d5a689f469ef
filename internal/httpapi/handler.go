// Package httpapi exposes the ticket engine over HTTP with gin.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognicore/ticketai/pkg/ticketai"
	"github.com/cognicore/ticketai/pkg/ticketai/intake"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

// Handler handles HTTP requests
type Handler struct {
	engine *ticketai.Engine
	bounds intake.Bounds
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(engine *ticketai.Engine, bounds intake.Bounds, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, bounds: bounds, logger: logger}
}

// NewRouter returns a gin engine with the middleware and every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(h.logger))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/tickets", h.CreateTicket)
		api.GET("/tickets", h.ListTickets)
		api.GET("/tickets/stats", h.GetStats)
		api.GET("/tickets/:id", h.GetTicket)
		api.PATCH("/tickets/:id/status", h.UpdateStatus)

		api.POST("/analyze", h.Analyze)
		api.GET("/models", h.GetModels)
	}

	r.GET("/health", h.HealthCheck)
}

type descriptionRequest struct {
	Description string        `json:"description"`
	Format      intake.Format `json:"format"`
}

// ticketView adds the display helpers to a ticket.
type ticketView struct {
	ticket.Ticket
	ConfidenceBand  ticket.Band `json:"confidence_band"`
	ConfidenceColor string      `json:"confidence_color"`
	NeedsReview     bool        `json:"needs_review"`
}

func (h *Handler) view(t ticket.Ticket) ticketView {
	th := h.engine.Thresholds()
	band := ticket.ConfidenceBand(t.AvgConfidence, th)
	return ticketView{
		Ticket:          t,
		ConfidenceBand:  band,
		ConfidenceColor: band.Color(),
		NeedsReview:     ticket.NeedsReview(t.AvgConfidence, th),
	}
}

// prepare binds a description body, converts HTML and validates the length.
func (h *Handler) prepare(c *gin.Context) (string, bool) {
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return "", false
	}
	text, err := intake.Prepare(req.Description, req.Format)
	if err == nil {
		err = intake.Validate(text, h.bounds)
	}
	if err != nil {
		h.fail(c, err)
		return "", false
	}
	return text, true
}

// CreateTicket classifies a description and returns the new ticket
func (h *Handler) CreateTicket(c *gin.Context) {
	text, ok := h.prepare(c)
	if !ok {
		return
	}

	t, err := h.engine.CreateTicket(c.Request.Context(), text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(t))
}

// ListTickets returns stored tickets, newest first
func (h *Handler) ListTickets(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	tickets, err := h.engine.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]ticketView, len(tickets))
	for i, t := range tickets {
		views[i] = h.view(t)
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets": views,
		"total":   len(views),
	})
}

// GetTicket returns one ticket
func (h *Handler) GetTicket(c *gin.Context) {
	t, err := h.engine.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(t))
}

// UpdateStatus moves a ticket to a new status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if err := h.engine.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_id": id, "status": req.Status})
}

// GetStats summarizes the stored tickets
func (h *Handler) GetStats(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	// stats cover every matching ticket unless a limit is given
	if c.Query("limit") == "" {
		f.Limit = store.NoLimit
	}
	s, err := h.engine.Stats(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Analyze normalizes a description and extracts entities without the models
func (h *Handler) Analyze(c *gin.Context) {
	text, ok := h.prepare(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.Analyze(text))
}

// GetModels describes the loaded models
func (h *Handler) GetModels(c *gin.Context) {
	report, err := h.engine.Models()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "ok"
	models := true
	if _, err := h.engine.Models(); err != nil {
		status, models = "degraded", false
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"models_loaded": models,
	})
}

func (h *Handler) filter(c *gin.Context) (store.Filter, bool) {
	f := store.Filter{
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, internalerr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, internalerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internalerr.ErrModelUnavailable), errors.Is(err, internalerr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	msg := err.Error()
	switch code {
	case http.StatusBadRequest:
		msg = intake.Message(err)
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	c.JSON(code, gin.H{"error": msg})
}
