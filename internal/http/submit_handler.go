package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bookdrop/internal/pipeline"
)

// SecretHeader carries the shared secret that authenticates inbound calls.
const SecretHeader = "X-Api-Key"

type Pipeline interface {
	Process(ctx context.Context, req pipeline.SubmissionRequest) (pipeline.Result, error)
}

// SubmitHandler accepts direct link submissions.
type SubmitHandler struct {
	pipeline Pipeline
	secret   string
}

func NewSubmitHandler(p Pipeline, secret string) *SubmitHandler {
	return &SubmitHandler{pipeline: p, secret: secret}
}

func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		JSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST", nil)
		return
	}
	if !secretMatches(r, h.secret) {
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bad or missing secret", nil)
		return
	}

	var req pipeline.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if details := ValidateStruct(req); details != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission", details)
		return
	}

	result, err := h.pipeline.Process(r.Context(), req)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	JSONResult(w, result)
}

func secretMatches(r *http.Request, secret string) bool {
	got := r.Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoIdentifier), errors.Is(err, pipeline.ErrUnresolved):
		// Minimal-design variant: no review queue to absorb the failure.
		JSONError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error(), nil)
	default:
		log.Printf("submission failed: %v", err)
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "server error", nil)
	}
}
