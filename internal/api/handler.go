package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"herald/internal/logger"
	"herald/internal/triage"
	"herald/pkg/errors"
	"herald/pkg/models"
)

// defaultStatsWindow bounds the stats query when the caller does not
// provide a since parameter.
const defaultStatsWindow = 24 * time.Hour

type Handler struct {
	service *triage.Service
	logger  logger.Logger
}

func NewHandler(service *triage.Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/classify", h.Classify)
		v1.GET("/results/:message_id", h.GetResult)
		v1.GET("/stats", h.GetStats)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// Classify godoc
// @Summary      Classify a message synchronously
// @Description  Run the full triage pipeline on a single normalized message and return the routing decision
// @Tags         triage
// @Accept       json
// @Produce      json
// @Param        message  body      models.NormalizedMessage  true  "Normalized message"
// @Success      200      {object}  models.ProcessingResult
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /classify [post]
func (h *Handler) Classify(c *gin.Context) {
	var msg models.NormalizedMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	result, err := h.service.Process(c.Request.Context(), &msg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult godoc
// @Summary      Fetch a stored triage result
// @Description  Look up the persisted processing result for a message by tenant and message ID
// @Tags         triage
// @Produce      json
// @Param        message_id  path      string  true  "Message ID"
// @Param        tenant_id   query     string  true  "Tenant ID"
// @Success      200         {object}  models.ProcessingResult
// @Failure      400         {object}  map[string]interface{}
// @Failure      404         {object}  map[string]interface{}
// @Router       /results/{message_id} [get]
func (h *Handler) GetResult(c *gin.Context) {
	messageID := c.Param("message_id")
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "tenant_id query parameter is required")))
		return
	}

	result, err := h.service.Result(c.Request.Context(), tenantID, messageID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.ErrNotFound))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats godoc
// @Summary      Triage pipeline statistics
// @Description  Rule engine counters plus decision counts for a tenant over a time window
// @Tags         triage
// @Produce      json
// @Param        tenant_id  query     string  false  "Tenant ID (decision counts are omitted without it)"
// @Param        since      query     string  false  "Window start, RFC 3339 (defaults to 24h ago)"
// @Success      200        {object}  triage.Stats
// @Failure      400        {object}  map[string]interface{}
// @Router       /stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	since := time.Now().Add(-defaultStatsWindow)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "since must be RFC 3339")))
			return
		}
		since = parsed
	}

	stats, err := h.service.Stats(c.Request.Context(), c.Query("tenant_id"), since)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
