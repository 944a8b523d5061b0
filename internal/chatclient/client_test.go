package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateConversation(t *testing.T) {
	var gotAuth string
	var gotBody findOrCreateReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/conversations", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"conversation": map[string]any{
				"conversation_id": "01HZXKQ3T2",
				"seller_id":       7,
				"product_id":      101,
				"subject":         "Inquiry about Walnut Desk",
				"seller_name":     "Oak & Co",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	info, err := c.FindOrCreateConversation(context.Background(), 101, "Inquiry about Walnut Desk")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, uint64(101), gotBody.ProductID)
	assert.Equal(t, "01HZXKQ3T2", info.ConversationID)
	assert.Equal(t, uint64(7), info.SellerID)
	assert.Equal(t, "Oak & Co", info.SellerName)
}

func TestListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/chat/conversations/01HZXKQ3T2/messages", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"messages": []map[string]any{
				{
					"message_id":      "m-1",
					"conversation_id": "01HZXKQ3T2",
					"sender_id":       42,
					"sender_type":     "customer",
					"message_text":    "Hi, is this in stock?",
					"message_type":    "text",
					"sent_at":         time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	msgs, err := c.ListMessages(context.Background(), "01HZXKQ3T2")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m-1", msgs[0].MessageID)
	assert.Equal(t, uint64(42), msgs[0].SenderID)
}

func TestAppendMessage(t *testing.T) {
	var gotBody appendMessageReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/conversations/01HZXKQ3T2/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": map[string]any{
				"message_id":      "m-2",
				"conversation_id": "01HZXKQ3T2",
				"sender_id":       42,
				"sender_type":     "customer",
				"message_text":    gotBody.MessageText,
				"message_type":    gotBody.MessageType,
				"sent_at":         time.Now().UTC(),
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	msg, err := c.AppendMessage(context.Background(), "01HZXKQ3T2", "Can you ship to Oslo?", "text")
	require.NoError(t, err)

	assert.Equal(t, "Can you ship to Oslo?", gotBody.MessageText)
	assert.Equal(t, "text", gotBody.MessageType)
	assert.Equal(t, "m-2", msg.MessageID)
}

func TestFailureEnvelopeSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "conversation not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	_, err := c.ListMessages(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation not found")
	assert.Contains(t, err.Error(), "404")
}

func TestUnparsableFailureFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	_, err := c.ListMessages(context.Background(), "01HZXKQ3T2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAuthFromToken(t *testing.T) {
	a := AuthFromToken("")
	assert.False(t, a.IsAuthenticated())

	// HS256 token with {"uid": 42}; the signature is never checked client-side
	tok := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1aWQiOjQyfQ.x"
	a = AuthFromToken(tok)
	assert.True(t, a.IsAuthenticated())
	assert.Equal(t, uint64(42), a.UserID())

	a = AuthFromToken("not-a-jwt")
	assert.False(t, a.IsAuthenticated())
}
