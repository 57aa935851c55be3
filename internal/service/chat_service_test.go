package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
)

func TestChatSyntheticReply(t *testing.T) {
	s := NewChatService("", testRand(1), UpstreamPolicy{Strict: true})

	resp, err := s.Chat(context.Background(), domain.ChatRequest{Message: "How is the Traffic today?"})
	require.NoError(t, err)

	assert.True(t, resp.IsMock)
	assert.Equal(t, defaultChatSession, resp.SessionID)
	assert.Contains(t, cannedReplies[2].replies, resp.Response)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := NewChatService("", testRand(1), UpstreamPolicy{})
	_, err := s.Chat(context.Background(), domain.ChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatSessionKeepsLastTenExchanges(t *testing.T) {
	s := NewChatService("", testRand(2), UpstreamPolicy{})
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		_, err := s.Chat(ctx, domain.ChatRequest{Message: fmt.Sprintf("message %d", i), SessionID: "abc"})
		require.NoError(t, err)
	}

	session, err := s.Session(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, maxSessionHistory, session.MessageCount)
	assert.Equal(t, "message 3", session.History[0].UserMessage)
	assert.Equal(t, "message 12", session.History[9].UserMessage)
}

func TestChatClearSession(t *testing.T) {
	s := NewChatService("", testRand(3), UpstreamPolicy{})
	ctx := context.Background()

	require.ErrorIs(t, s.ClearSession(ctx, "nope"), ErrNotFound)
	_, err := s.Session(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Chat(ctx, domain.ChatRequest{Message: "hello", SessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, s.ClearSession(ctx, "s1"))

	session, err := s.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, session.MessageCount)
	assert.NotNil(t, session.History)
}

func TestChatCallsGemini(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, geminiPath, r.URL.Path)
		assert.Equal(t, "gm-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Take the bus."}]}}]}`))
	}))
	defer srv.Close()

	s := NewChatService("gm-key", testRand(4), UpstreamPolicy{}).WithBaseURL(srv.URL)
	ctx := context.Background()

	resp, err := s.Chat(ctx, domain.ChatRequest{Message: "How do I get downtown?", SessionID: "g"})
	require.NoError(t, err)
	assert.Equal(t, "Take the bus.", resp.Response)
	assert.False(t, resp.IsMock)

	_, err = s.Chat(ctx, domain.ChatRequest{Message: "And back?", SessionID: "g"})
	require.NoError(t, err)

	// context, previous exchange (user + model), new message
	require.Len(t, got.Contents, 4)
	assert.Equal(t, assistantContext, got.Contents[0].Parts[0].Text)
	assert.Equal(t, "model", got.Contents[2].Role)
	assert.Equal(t, "And back?", got.Contents[3].Parts[0].Text)
}

func TestChatProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	ctx := context.Background()

	lenient := NewChatService("gm-key", testRand(5), UpstreamPolicy{}).WithBaseURL(srv.URL)
	resp, err := lenient.Chat(ctx, domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, resp.IsMock)

	strict := NewChatService("gm-key", testRand(5), UpstreamPolicy{Strict: true}).WithBaseURL(srv.URL)
	_, err = strict.Chat(ctx, domain.ChatRequest{Message: "hello", SessionID: "x"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	_, err = strict.Session(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
