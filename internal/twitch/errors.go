package twitch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUpstreamAuth indicates the authorization endpoint rejected the token request.
	ErrUpstreamAuth = errors.New("twitch authorization request failed")
	// ErrUpstreamAPI indicates the Helix API rejected a resource request.
	ErrUpstreamAPI = errors.New("twitch api request failed")
)

// Endpoint names the Twitch endpoint an UpstreamError came from.
type Endpoint string

const (
	EndpointAuth   Endpoint = "auth"
	EndpointVideos Endpoint = "videos"
)

// UpstreamError is a normalized non-success response from Twitch.
type UpstreamError struct {
	Endpoint Endpoint
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Twitch API error (%d): %s", e.Status, e.Message)
}

// Unwrap maps the error onto ErrUpstreamAuth or ErrUpstreamAPI.
func (e *UpstreamError) Unwrap() error {
	if e.Endpoint == EndpointAuth {
		return ErrUpstreamAuth
	}
	return ErrUpstreamAPI
}

type errorBody struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// parseError builds an UpstreamError from whatever the error body provides,
// falling back to the HTTP status line.
func parseError(endpoint Endpoint, statusCode int, body []byte) *UpstreamError {
	var payload errorBody
	_ = json.Unmarshal(body, &payload)

	status := payload.Status
	if status == 0 {
		status = statusCode
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = strings.TrimSpace(payload.Error)
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if message == "" {
		message = "unexpected response"
	}

	return &UpstreamError{Endpoint: endpoint, Status: status, Message: message}
}
