package apiresp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the only non-bare response shape. Success payloads are
// written as-is because the mobile client decodes arrays and objects
// directly.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

const sanitizedUpstreamMessage = "layanan sedang bermasalah, coba lagi nanti"

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorBody{
		Error:     msg,
		Code:      CodeFromStatus(status),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// WriteUpstream reports a store or identity failure as 500. In production
// the underlying message is replaced so driver errors never reach clients.
func WriteUpstream(w http.ResponseWriter, r *http.Request, err error, production bool) {
	msg := sanitizedUpstreamMessage
	if !production && err != nil {
		msg = err.Error()
	}
	WriteError(w, r, http.StatusInternalServerError, msg)
}

func CodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "upstream_failure"
	default:
		if status >= 200 && status < 300 {
			return ""
		}
		return "error"
	}
}
