package response

import (
	"log/slog"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IPInfoResponse represents a successful response containing client IP info.
type IPInfoResponse struct {
	Status int
	Body   IPInfoBody
}

// IPInfoBody is the JSON body for an IP info response.
type IPInfoBody struct {
	PublicIP  string `json:"public_ip"`
	PeerIP    string `json:"peer_ip"`
	Forwarded string `json:"forwarded"`
	UserAgent string `json:"user_agent"`
}

// ErrorBody is the JSON body for error responses.
type ErrorBody struct {
	Description string `json:"description"`
}

// RequestError represents an error with an associated HTTP status code.
type RequestError struct {
	Status      int
	Description string
	RetryAfter  int // Seconds until retry is allowed (for rate limiting)
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Description
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	js, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"description":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// WriteError writes a RequestError as a JSON error response. A positive
// RetryAfter is surfaced as a Retry-After header so clients can back off.
func WriteError(w http.ResponseWriter, reqErr *RequestError, logger *slog.Logger) {
	if reqErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(reqErr.RetryAfter))
	}
	WriteJSON(w, reqErr.Status, ErrorBody{Description: reqErr.Description}, logger)
}

// BuildErrorJSON marshals an error description to JSON.
// If marshaling fails, it logs the error and returns a fallback message.
func BuildErrorJSON(description string, logger *slog.Logger) string {
	body := ErrorBody{Description: description}
	js, err := json.Marshal(body)
	if err != nil {
		logger.Error("failed to marshal error response", "error", err)
		return `{"description":"internal server error"}`
	}
	return string(js)
}
