package server

import (
	"encoding/json"
	"net/http"

	"github.com/tutuni-ai/backend/internal/chat"
)

// errorBody is the wire shape of every error response. The message is
// always safe for clients; internals stay in the logs.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client-safe messages per reason code.
var reasonMessages = map[chat.ReasonCode]string{
	chat.ReasonValidation:        "the request is invalid",
	chat.ReasonQuotaExceeded:     "daily message limit reached",
	chat.ReasonNotFound:          "project not found",
	chat.ReasonRetrievalError:    "document search is temporarily unavailable",
	chat.ReasonTimeout:           "the answer took too long to generate",
	chat.ReasonRateLimited:       "the ai service is busy, retry shortly",
	chat.ReasonUpstreamError:     "the ai service is temporarily unavailable",
	chat.ReasonMalformedResponse: "the ai service returned an unusable answer",
	chat.ReasonPersistenceError:  "the conversation could not be saved",
	chat.ReasonInternal:          "internal error",
}

var reasonStatus = map[chat.ReasonCode]int{
	chat.ReasonValidation:        http.StatusBadRequest,
	chat.ReasonQuotaExceeded:     http.StatusTooManyRequests,
	chat.ReasonNotFound:          http.StatusNotFound,
	chat.ReasonRetrievalError:    http.StatusServiceUnavailable,
	chat.ReasonTimeout:           http.StatusGatewayTimeout,
	chat.ReasonRateLimited:       http.StatusServiceUnavailable,
	chat.ReasonUpstreamError:     http.StatusBadGateway,
	chat.ReasonMalformedResponse: http.StatusBadGateway,
	chat.ReasonPersistenceError:  http.StatusInternalServerError,
	chat.ReasonInternal:          http.StatusInternalServerError,
}

// writeTurnError maps a turn error to its HTTP response and logs the
// underlying cause.
func (s *Server) writeTurnError(w http.ResponseWriter, r *http.Request, err error) {
	reason := chat.ReasonOf(err)

	status, ok := reasonStatus[reason]
	if !ok {
		status = http.StatusInternalServerError
	}
	message, ok := reasonMessages[reason]
	if !ok {
		message = "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"reason": string(reason),
		})
	} else {
		s.log.Info("request refused", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"reason": string(reason),
		})
	}

	s.writeError(w, status, string(reason), message)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", err, nil)
	}
}
