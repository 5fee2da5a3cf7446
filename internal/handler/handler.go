package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/DIP-Sharing-Board/discord-bot/docs"
	"github.com/DIP-Sharing-Board/discord-bot/internal/dto"
	"github.com/DIP-Sharing-Board/discord-bot/internal/service"
)

const healthCheckTimeout = 2 * time.Second

type Handler struct {
	activityService service.ActivityServicer
	gatherer        prometheus.Gatherer
	router          *gin.Engine
	log             *zap.Logger
}

func NewHandler(activityService service.ActivityServicer, gatherer prometheus.Gatherer, log *zap.Logger) *Handler {
	h := &Handler{
		activityService: activityService,
		gatherer:        gatherer,
		router:          gin.Default(),
		log:             log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/messages", h.submitMessage)
	h.router.POST("/messages/bulk", h.submitMessagesBulk)
	h.router.GET("/activities/:category", h.listActivities)
	h.router.GET("/activities/:category/:hash", h.getActivity)
	h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles GET /health and reports the store as unavailable when
// it cannot be pinged
// @Summary Health check
// @Description Check that the service is running and the store answers
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.activityService.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// submitMessage handles POST /messages
// @Summary Submit a chat message
// @Description Queue a chat message for link extraction and ingestion
// @Tags messages
// @Accept json
// @Produce json
// @Param message body dto.SubmitMessageRequest true "Chat message"
// @Success 202 {object} dto.SubmitMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /messages [post]
func (h *Handler) submitMessage(c *gin.Context) {
	var req dto.SubmitMessageRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid message request",
			zap.Error(err),
			zap.String("channel_id", req.ChannelID))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	messageID, err := h.activityService.SubmitMessage(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to submit message",
			zap.String("channel_id", req.ChannelID))
		return
	}

	h.log.Info("Message accepted",
		zap.String("message_id", messageID),
		zap.String("channel_id", req.ChannelID),
		zap.String("channel_name", req.ChannelName))

	c.JSON(http.StatusAccepted, dto.SubmitMessageResponse{
		MessageID: messageID,
		Status:    "accepted",
	})
}

// submitMessagesBulk handles POST /messages/bulk
// @Summary Submit chat messages in bulk
// @Description Queue up to 100 chat messages; each one is accepted or rejected on its own
// @Tags messages
// @Accept json
// @Produce json
// @Param messages body dto.SubmitMessagesBulkRequest true "Chat messages"
// @Success 202 {object} dto.SubmitMessagesBulkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /messages/bulk [post]
func (h *Handler) submitMessagesBulk(c *gin.Context) {
	var bulkRequest dto.SubmitMessagesBulkRequest

	if err := c.ShouldBindJSON(&bulkRequest); err != nil {
		h.log.Warn("Invalid bulk message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	messageIDs, errs, err := h.activityService.SubmitMessages(c.Request.Context(), bulkRequest.Messages)
	if err != nil {
		h.respondError(c, err, "Failed to submit bulk messages",
			zap.Int("message_count", len(bulkRequest.Messages)))
		return
	}

	h.log.Info("Bulk messages processed",
		zap.Int("accepted", len(messageIDs)),
		zap.Int("rejected", len(errs)),
		zap.Int("total", len(bulkRequest.Messages)))

	c.JSON(http.StatusAccepted, dto.SubmitMessagesBulkResponse{
		Accepted:   len(messageIDs),
		Rejected:   len(errs),
		MessageIDs: messageIDs,
		Errors:     errs,
	})
}

// listActivities handles GET /activities/:category
// @Summary List stored activities
// @Description List activities of one category, most recently seen first
// @Tags activities
// @Produce json
// @Param category path string true "Activity category" Enums(camp, competition, other)
// @Param limit query int false "Maximum number of rows (1-500, default 50)"
// @Param active query bool false "Only rows still marked active"
// @Success 200 {object} dto.ListActivitiesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /activities/{category} [get]
func (h *Handler) listActivities(c *gin.Context) {
	var req dto.ListActivitiesRequest

	if err := c.ShouldBindUri(&req); err != nil {
		h.log.Warn("Invalid activities path", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid activities query",
			zap.Error(err),
			zap.String("category", req.Category))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.activityService.ListActivities(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to list activities",
			zap.String("category", req.Category))
		return
	}

	h.log.Debug("Activities listed",
		zap.String("category", response.Category),
		zap.Int("count", response.Count))

	c.JSON(http.StatusOK, response)
}

// getActivity handles GET /activities/:category/:hash
// @Summary Get a stored activity
// @Description Look up one activity by the MD5 hash of its canonical link
// @Tags activities
// @Produce json
// @Param category path string true "Activity category" Enums(camp, competition, other)
// @Param hash path string true "Hash key of the canonical link"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /activities/{category}/{hash} [get]
func (h *Handler) getActivity(c *gin.Context) {
	var req dto.GetActivityRequest

	if err := c.ShouldBindUri(&req); err != nil {
		h.log.Warn("Invalid activity path", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.activityService.GetActivity(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to get activity",
			zap.String("category", req.Category),
			zap.String("hash_key", req.HashKey))
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) respondError(c *gin.Context, err error, msg string, fields ...zap.Field) {
	if errors.Is(err, service.ErrNotFound) {
		h.log.Debug(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
		return
	}

	if errors.Is(err, service.ErrInvalidRequest) {
		h.log.Warn(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Error(msg, append(fields, zap.Error(err))...)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
