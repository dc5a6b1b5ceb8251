package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookdrop/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	got    *pipeline.SubmissionRequest
	result pipeline.Result
	err    error
}

func (f *fakePipeline) Process(_ context.Context, req pipeline.SubmissionRequest) (pipeline.Result, error) {
	f.got = &req
	return f.result, f.err
}

const testSecret = "club-secret"

func postSubmission(handler *SubmitHandler, method, body, secret string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, "/submissions", strings.NewReader(body))
	if secret != "" {
		r.Header.Set(SecretHeader, secret)
	}
	handler.Submit(w, r)
	return w
}

func TestSubmitAdded(t *testing.T) {
	p := &fakePipeline{result: pipeline.Result{Added: true, Message: `added "Example Book" to the ledger`}}
	handler := NewSubmitHandler(p, testSecret)

	w := postSubmission(handler, http.MethodPost,
		`{"original_url": "https://www.amazon.com/dp/0143127748", "sender_email": "reader@example.com", "subject": "book idea"}`,
		testSecret)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["added"])
	assert.NotEmpty(t, body["message"])

	require.NotNil(t, p.got)
	assert.Equal(t, "https://www.amazon.com/dp/0143127748", p.got.OriginalURL)
	assert.Equal(t, "reader@example.com", p.got.SenderEmail)
}

func TestSubmitQueued(t *testing.T) {
	p := &fakePipeline{result: pipeline.Result{Queued: true, Message: "submission queued for manual review"}}
	handler := NewSubmitHandler(p, testSecret)

	w := postSubmission(handler, http.MethodPost, `{"original_url": "https://amzn.to/3xYzAbC"}`, testSecret)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["queued"])
	_, hasAdded := body["added"]
	assert.False(t, hasAdded)
}

func TestSubmitStatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		secret         string
		pipelineErr    error
		expectedStatus int
	}{
		{
			name:           "wrong verb",
			method:         http.MethodGet,
			body:           "",
			secret:         testSecret,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "missing secret",
			method:         http.MethodPost,
			body:           `{"original_url": "https://amzn.to/x"}`,
			secret:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret",
			method:         http.MethodPost,
			body:           `{"original_url": "https://amzn.to/x"}`,
			secret:         "wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed JSON",
			method:         http.MethodPost,
			body:           `{not json`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing url",
			method:         http.MethodPost,
			body:           `{"sender_email": "reader@example.com"}`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid url",
			method:         http.MethodPost,
			body:           `{"original_url": "not a url"}`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid sender email",
			method:         http.MethodPost,
			body:           `{"original_url": "https://amzn.to/x", "sender_email": "nope"}`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "extraction failure without queue",
			method:         http.MethodPost,
			body:           `{"original_url": "https://www.amazon.com/gp/bestsellers"}`,
			secret:         testSecret,
			pipelineErr:    pipeline.ErrNoIdentifier,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "unresolved without queue",
			method:         http.MethodPost,
			body:           `{"original_url": "https://www.amazon.com/dp/0143127748"}`,
			secret:         testSecret,
			pipelineErr:    pipeline.ErrUnresolved,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "store failure",
			method:         http.MethodPost,
			body:           `{"original_url": "https://www.amazon.com/dp/0143127748"}`,
			secret:         testSecret,
			pipelineErr:    errors.New("write ledger: boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSubmitHandler(&fakePipeline{err: tt.pipelineErr}, testSecret)
			w := postSubmission(handler, tt.method, tt.body, tt.secret)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
