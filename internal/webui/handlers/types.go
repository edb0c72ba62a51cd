package handlers

import (
	"context"
	"time"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/domain/dm"
)

// Sender runs one send request.
type Sender interface {
	Process(ctx context.Context, handle, body string) dm.Result
}

// APIResponse is the envelope for error answers outside the send endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendRequest is the JSON body of POST /api/messages.
type SendRequest struct {
	Username string `json:"username" form:"username"`
	Message  string `json:"message" form:"message"`
}

// SendResponse reports the outcome of one send request.
type SendResponse struct {
	Success bool    `json:"success"`
	Kind    dm.Kind `json:"kind"`
	Message string  `json:"message"`
}

// StatusResponse is the connectivity probe result.
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Handle    string `json:"handle,omitempty"`
	Display   string `json:"display"`
}

func newStatusResponse(status messaging.ConnectionStatus) StatusResponse {
	return StatusResponse{Connected: status.Connected, Handle: status.Handle, Display: status.Display}
}

// HealthResponse is the liveness answer.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// pageData feeds index.html.tmpl.
type pageData struct {
	Status      messaging.ConnectionStatus
	Username    string
	Message     string
	StatusText  string
	StatusClass string
}

const readyText = "Ready to send"

func statusClass(kind dm.Kind) string {
	switch kind {
	case "":
		return ""
	case dm.KindDelivered:
		return "delivered"
	default:
		return "failed"
	}
}
