package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient("test-key", "test-model")
	c.baseURL = baseURL
	c.backoffBase = time.Millisecond
	return c
}

func candidateBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateContentSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var payload geminiPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 1)
		assert.Equal(t, "hello prompt", payload.Contents[0].Parts[0].Text)

		w.Write([]byte(candidateBody("Great choice, keep it balanced!")))
	}))
	defer srv.Close()

	text, err := testClient(t, srv.URL).GenerateContent(context.Background(), "hello prompt")
	require.NoError(t, err)
	assert.Equal(t, "Great choice, keep it balanced!", text)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateContentRetriesQuotaThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(candidateBody("made it")))
	}))
	defer srv.Close()

	text, err := testClient(t, srv.URL).GenerateContent(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "made it", text)
	assert.Equal(t, int32(4), calls.Load(), "3 quota failures then a success is exactly 4 attempts")
}

func TestGenerateContentQuotaExhaustedAfterAllAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).GenerateContent(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Equal(t, int32(4), calls.Load(), "retry budget is 1 initial + 3 retries")
}

func TestGenerateContentNonQuotaFailureDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).GenerateContent(context.Background(), "p")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrQuotaExceeded))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateContentMalformedResponseDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).GenerateContent(context.Background(), "p")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrQuotaExceeded))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateContentEmptyCandidatesIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	text, err := testClient(t, srv.URL).GenerateContent(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateContentNotConfigured(t *testing.T) {
	c := NewClient("", "test-model")
	_, err := c.GenerateContent(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestGenerateContentCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.backoffBase = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GenerateContent(ctx, "p")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBackoffDelaySchedule(t *testing.T) {
	c := NewClient("k", "m")

	assert.Equal(t, 2*time.Second, c.backoffDelay(1))
	assert.Equal(t, 4*time.Second, c.backoffDelay(2))
	assert.Equal(t, 8*time.Second, c.backoffDelay(3))

	// Capped at maxBackoff no matter how deep the retry sequence goes.
	assert.Equal(t, 30*time.Second, c.backoffDelay(10))
}
