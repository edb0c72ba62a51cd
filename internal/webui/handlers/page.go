package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/logging"
)

// PageTemplate is the name of the form page template.
const PageTemplate = "index.html.tmpl"

// PageHandler serves the HTML form.
type PageHandler struct {
	sender Sender
	status messaging.ConnectionStatus
	logger logging.Logger
}

// NewPageHandler builds the form handler.
func NewPageHandler(sender Sender, status messaging.ConnectionStatus, logger logging.Logger) *PageHandler {
	return &PageHandler{sender: sender, status: status, logger: logging.OrNop(logger)}
}

// Index renders the empty form.
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, PageTemplate, pageData{
		Status:     h.status,
		StatusText: readyText,
	})
}

// Send handles the form submit and re-renders the page with the outcome.
// Inputs are kept so the operator can correct and resubmit.
func (h *PageHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Bad form submission: %v", err)
	}

	// A submitted send always runs to completion.
	ctx := context.WithoutCancel(c.Request.Context())
	result := h.sender.Process(ctx, req.Username, req.Message)

	c.HTML(http.StatusOK, PageTemplate, pageData{
		Status:      h.status,
		Username:    req.Username,
		Message:     req.Message,
		StatusText:  result.Text,
		StatusClass: statusClass(result.Kind),
	})
}
