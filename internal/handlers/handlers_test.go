package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/stackit/backend/internal/assistant"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad vote", service.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: email taken", service.ErrConflict), http.StatusBadRequest},
		{fmt.Errorf("%w: nope", service.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: not yours", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: question not found", service.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "question not found", publicMessage(fmt.Errorf("%w: question not found", service.ErrNotFound)))
	assert.Equal(t, "plain", publicMessage(errors.New("plain")))
}

func TestRespondHidesInternalErrors(t *testing.T) {
	var logs bytes.Buffer
	e := &errorResponder{log: slog.New(slog.NewTextHandler(&logs, nil))}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	e.respond(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "connection refused")
}

type fixedAnswerer struct{}

func (fixedAnswerer) Answer(context.Context, string) assistant.Result {
	return assistant.Result{Answer: "42", ModelUsed: "stub", ResponseTime: 0.01}
}

func TestGetAIAnswer(t *testing.T) {
	h := &AIHandler{ai: fixedAnswerer{}}
	r := gin.New()
	r.POST("/questions/answers_ai", h.GetAIAnswer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions/answers_ai",
		bytes.NewBufferString(`{"question":"meaning of life?"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"42","model_used":"stub","response_time":0.01}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/questions/answers_ai", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewHandlerDefaultsLogger(t *testing.T) {
	h := NewHandler(&service.Services{}, fixedAnswerer{}, nil)
	assert.NotNil(t, h.Question.errs.log)

	h = NewHandler(&service.Services{}, fixedAnswerer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NotNil(t, h.AI.ai)
}
