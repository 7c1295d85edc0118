package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crisiscompass/internal/domain"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(Config{
		BaseURL:     url,
		APIKeyEnv:   "TEST_LLM_KEY",
		Model:       "test-model",
		Temperature: 0.2,
		Timeout:     5 * time.Second,
		MaxRetries:  2,
	})
	require.NoError(t, err)
	return c
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestCompleteMapsRoles(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(completionResponse("hello"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	answer, err := c.Complete(context.Background(), "be helpful", []domain.Turn{
		{Role: domain.RoleHuman, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleHuman, Content: "question"},
	})
	require.NoError(t, err)
	require.Equal(t, "hello", answer)

	require.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 4)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "be helpful", got.Messages[0].Content)
	require.Equal(t, "user", got.Messages[1].Role)
	require.Equal(t, "assistant", got.Messages[2].Role)
	require.Equal(t, "user", got.Messages[3].Role)
}

func TestCompleteRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse("recovered"))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	answer, err := c.Complete(context.Background(), "sys", []domain.Turn{{Role: domain.RoleHuman, Content: "q"}})
	require.NoError(t, err)
	require.Equal(t, "recovered", answer)
	require.Equal(t, int32(2), calls.Load())
}

func TestCompleteEmptyCompletionIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse("   "))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Complete(context.Background(), "sys", []domain.Turn{{Role: domain.RoleHuman, Content: "q"}})
	require.ErrorIs(t, err, domain.ErrLanguageModel)
}

func TestCompleteRetryExhaustion(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Complete(context.Background(), "sys", []domain.Turn{{Role: domain.RoleHuman, Content: "q"}})
	require.ErrorIs(t, err, domain.ErrLanguageModel)
	require.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}
