package http

import (
	"encoding/json"
	"net/http"
	"regexp"

	"bookdrop/internal/pipeline"
)

// bookLinkPattern anchors on the product domain and the recognized
// short-link domains; the first match in the message body wins.
var bookLinkPattern = regexp.MustCompile(`(?i)https?://(?:[a-z0-9-]+\.)*(?:amazon\.[a-z.]{2,6}|amzn\.to|amzn\.eu|a\.co)/[^\s<>"]+`)

// TriggerHandler adapts inbound email notifications: it pulls the first
// recognizable book link out of the free-form body and feeds the same
// pipeline the direct submission endpoint uses.
type TriggerHandler struct {
	pipeline Pipeline
	secret   string
}

func NewTriggerHandler(p Pipeline, secret string) *TriggerHandler {
	return &TriggerHandler{pipeline: p, secret: secret}
}

type emailPayload struct {
	SenderEmail string `json:"sender_email" validate:"omitempty,email"`
	Subject     string `json:"subject"`
	Body        string `json:"body" validate:"required"`
}

func (h *TriggerHandler) Email(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		JSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST", nil)
		return
	}
	if !secretMatches(r, h.secret) {
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad or missing secret", nil)
		return
	}

	var payload emailPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(payload); details != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid trigger payload", details)
		return
	}

	link := bookLinkPattern.FindString(payload.Body)
	if link == "" {
		JSONError(w, http.StatusBadRequest, "NO_LINK", "no recognizable book link in message body", nil)
		return
	}

	result, err := h.pipeline.Process(r.Context(), pipeline.SubmissionRequest{
		OriginalURL: link,
		SenderEmail: payload.SenderEmail,
		Subject:     payload.Subject,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	JSONResult(w, result)
}
