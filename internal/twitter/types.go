package twitter

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	dmerrors "dmdesk/internal/errors"
)

// User is the subset of the v2 user object the client reads.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Problem is an entry of a v2 "errors" array or a top-level problem body.
type Problem struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	Type         string `json:"type"`
	Status       int    `json:"status,omitempty"`
	Value        string `json:"value,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	Parameter    string `json:"parameter,omitempty"`
}

// IsResourceNotFound reports whether the problem says the resource does not exist.
func (p Problem) IsResourceNotFound() bool {
	return strings.HasSuffix(p.Type, "/resource-not-found")
}

type userResponse struct {
	Data   *User     `json:"data"`
	Errors []Problem `json:"errors"`
}

type errorResponse struct {
	Problem
	Errors []Problem `json:"errors"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Data struct {
		ConversationID string `json:"dm_conversation_id"`
		EventID        string `json:"dm_event_id"`
	} `json:"data"`
}

// APIError is a non-success answer from the API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Type       string
}

func (e *APIError) Error() string {
	title := e.Title
	if title == "" {
		title = http.StatusText(e.StatusCode)
	}
	if e.Detail == "" || e.Detail == title {
		return fmt.Sprintf("%d %s", e.StatusCode, title)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, title, e.Detail)
}

// HTTPStatusCode returns the response status code.
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

func newAPIError(status int, body errorResponse) *APIError {
	p := body.Problem
	if p.Title == "" && p.Detail == "" && len(body.Errors) > 0 {
		p = body.Errors[0]
	}
	return &APIError{StatusCode: status, Title: p.Title, Detail: p.Detail, Type: p.Type}
}

// classify wraps apiErr as transient or permanent. Transient errors carry the
// wait the API advised through Retry-After or x-rate-limit-reset.
func classify(apiErr *APIError, header http.Header, now time.Time) error {
	if dmerrors.IsTransient(apiErr) {
		return &dmerrors.TransientError{
			Err:        apiErr,
			StatusCode: apiErr.StatusCode,
			RetryAfter: retryAfterSeconds(header, now),
			Message:    apiErr.Error(),
		}
	}
	return &dmerrors.PermanentError{
		Err:        apiErr,
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Error(),
	}
}

func retryAfterSeconds(header http.Header, now time.Time) int {
	if value := strings.TrimSpace(header.Get("Retry-After")); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return max(seconds, 0)
		}
		if at, err := http.ParseTime(value); err == nil {
			return ceilSeconds(at.Sub(now))
		}
	}
	if value := strings.TrimSpace(header.Get("x-rate-limit-reset")); value != "" {
		if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
			return ceilSeconds(time.Unix(epoch, 0).Sub(now))
		}
	}
	return 0
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
