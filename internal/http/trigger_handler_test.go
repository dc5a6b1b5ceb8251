package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookdrop/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postEmail(handler *TriggerHandler, body, secret string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/email", strings.NewReader(body))
	if secret != "" {
		r.Header.Set(SecretHeader, secret)
	}
	handler.Email(w, r)
	return w
}

func TestEmailTriggerExtractsLink(t *testing.T) {
	p := &fakePipeline{result: pipeline.Result{Added: true, Message: "added"}}
	handler := NewTriggerHandler(p, testSecret)

	w := postEmail(handler, `{
		"sender_email": "reader@example.com",
		"subject": "next month?",
		"body": "Hi! What about this one: https://www.amazon.com/Some-Book/dp/0143127748?ref=x have a look"
	}`, testSecret)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, p.got)
	assert.Equal(t, "https://www.amazon.com/Some-Book/dp/0143127748?ref=x", p.got.OriginalURL)
	assert.Equal(t, "reader@example.com", p.got.SenderEmail)
	assert.Equal(t, "next month?", p.got.Subject)
}

func TestEmailTriggerShortLink(t *testing.T) {
	p := &fakePipeline{result: pipeline.Result{Queued: true}}
	handler := NewTriggerHandler(p, testSecret)

	w := postEmail(handler, `{"body": "check https://amzn.to/3xYzAbC please"}`, testSecret)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, p.got)
	assert.Equal(t, "https://amzn.to/3xYzAbC", p.got.OriginalURL)
}

func TestEmailTriggerFirstLinkWins(t *testing.T) {
	p := &fakePipeline{result: pipeline.Result{Added: true}}
	handler := NewTriggerHandler(p, testSecret)

	w := postEmail(handler, `{"body": "https://a.co/d/abc123 and also https://www.amazon.com/dp/0143127748"}`, testSecret)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, p.got)
	assert.Equal(t, "https://a.co/d/abc123", p.got.OriginalURL)
}

func TestEmailTriggerRejections(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		secret         string
		expectedStatus int
	}{
		{
			name:           "no recognizable link",
			body:           `{"body": "see https://example.com/some-book instead"}`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty body field",
			body:           `{"sender_email": "reader@example.com"}`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed JSON",
			body:           `oops`,
			secret:         testSecret,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad secret",
			body:           `{"body": "https://amzn.to/x"}`,
			secret:         "wrong",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTriggerHandler(&fakePipeline{}, testSecret)
			w := postEmail(handler, tt.body, tt.secret)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
