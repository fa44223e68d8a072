// Package api defines the response envelopes shared by every HTTP handler.
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"msg"`
}

// MessageResponse carries a plain status message.
type MessageResponse struct {
	Message string `json:"msg"`
}
