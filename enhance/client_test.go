package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"release-service/config"
	"release-service/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(apiKey, baseURL string) *Client {
	return NewClient(&config.Config{
		OpenAIAPIKey:   apiKey,
		OpenAIModel:    "gpt-4o-mini",
		OpenAIBaseURL:  baseURL,
		EnhanceTimeout: 5 * time.Second,
	})
}

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestRewrite_Success(t *testing.T) {
	var gotReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, chatReply("Patrol completed without incident."))
	}))
	defer srv.Close()

	out := testClient("test-key", srv.URL).Rewrite(context.Background(), "patrol ok", form.FieldNarrative)

	assert.Equal(t, "Patrol completed without incident.", out)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "patrol ok")
	assert.Contains(t, gotReq.Messages[1].Content, "histórico")
}

func TestRewrite_ProductivityPrompt(t *testing.T) {
	var gotReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, chatReply("ok"))
	}))
	defer srv.Close()

	testClient("test-key", srv.URL).Rewrite(context.Background(), "2 stops", form.FieldProductivity)

	assert.Contains(t, gotReq.Messages[1].Content, "produtividade")
}

func TestRewrite_MissingKeyReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no call expected without a credential")
	}))
	defer srv.Close()

	out := testClient("", srv.URL).Rewrite(context.Background(), "original", form.FieldNarrative)
	assert.Equal(t, "original", out)
}

func TestRewrite_TransportErrorReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	out := testClient("test-key", srv.URL).Rewrite(context.Background(), "original", form.FieldNarrative)
	assert.Equal(t, "original", out)
}

func TestRewrite_APIErrorReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	out := testClient("test-key", srv.URL).Rewrite(context.Background(), "original", form.FieldNarrative)
	assert.Equal(t, "original", out)
}

func TestRewrite_EmptyResponseReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(""))
	}))
	defer srv.Close()

	out := testClient("test-key", srv.URL).Rewrite(context.Background(), "original", form.FieldNarrative)
	assert.Equal(t, "original", out)
}
