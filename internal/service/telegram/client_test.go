package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "TOKEN", 5*time.Second)
}

func TestGetUpdates(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "10", r.PostForm.Get("offset"))
		assert.Equal(t, "30", r.PostForm.Get("timeout"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":5,"from":{"id":7,"first_name":"Ann"},"chat":{"id":-100,"type":"supergroup"},"text":"hi"}}]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 10, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(10), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "hi", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.From.ID)
	assert.Equal(t, int64(-100), updates[0].Message.Chat.ID)
}

func TestSendMessage(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "-100", r.PostForm.Get("chat_id"))
		assert.Equal(t, "hello", r.PostForm.Get("text"))
		assert.Contains(t, r.PostForm.Get("reply_parameters"), `"message_id":5`)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":6,"chat":{"id":-100,"type":"supergroup"},"text":"hello"}}`))
	})

	msg, err := c.SendMessage(context.Background(), -100, "hello", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), msg.MessageID)
}

func TestAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":3}}`))
	})

	_, err := c.GetMe(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTelegramAPI, apperrors.CodeOf(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.Code)
	assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
}

func TestTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "TOKEN", time.Second)
	_, err := c.GetMe(context.Background())
	assert.Equal(t, apperrors.ErrCodeTelegramAPI, apperrors.CodeOf(err))
}
