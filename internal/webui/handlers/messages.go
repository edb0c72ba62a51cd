package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/domain/dm"
	"dmdesk/internal/logging"
)

// MessageHandler serves the JSON send endpoint.
type MessageHandler struct {
	sender Sender
	logger logging.Logger
}

// NewMessageHandler builds the JSON send handler.
func NewMessageHandler(sender Sender, logger logging.Logger) *MessageHandler {
	return &MessageHandler{sender: sender, logger: logging.OrNop(logger)}
}

// SendMessage handles POST /api/messages.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result := h.sender.Process(ctx, req.Username, req.Message)

	c.JSON(httpStatusFor(result.Kind), SendResponse{
		Success: result.OK(),
		Kind:    result.Kind,
		Message: result.Text,
	})
}

func httpStatusFor(kind dm.Kind) int {
	switch kind {
	case dm.KindDelivered:
		return http.StatusOK
	case dm.KindInputMissing:
		return http.StatusBadRequest
	case dm.KindAccountNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// StatusHandler reports the startup probe and liveness.
type StatusHandler struct {
	status    messaging.ConnectionStatus
	version   string
	startTime time.Time
}

// NewStatusHandler builds the status handler.
func NewStatusHandler(status messaging.ConnectionStatus, version string) *StatusHandler {
	return &StatusHandler{status: status, version: version, startTime: time.Now()}
}

// Status handles GET /api/status.
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, newStatusResponse(h.status))
}

// Health handles GET /api/health.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
