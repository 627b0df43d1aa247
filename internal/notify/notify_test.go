package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type captured struct {
	method      string
	contentType string
	body        map[string]any
}

// webhook records each request on the returned channel.
func webhook(t *testing.T, status int, reply string) (*httptest.Server, <-chan captured) {
	t.Helper()

	requests := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := captured{method: r.Method, contentType: r.Header.Get("Content-Type")}
		if data, err := io.ReadAll(r.Body); err == nil {
			_ = json.Unmarshal(data, &got.body)
		}
		requests <- got
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	return srv, requests
}

func TestSendEmbed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		prefix string
		color  float64
	}{
		{KindSuccess, "✅ ", 0x00FF00},
		{KindWarning, "⚠️ ", 0xFFFF00},
		{KindError, "❌ ", 0xFF0000},
		{KindInfo, "ℹ️ ", 0x0099FF},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			srv, requests := webhook(t, http.StatusNoContent, "")
			c, err := New(srv.URL)
			require.NoError(t, err)

			require.NoError(t, c.Send(context.Background(), tt.kind, "azalea bumped"))
			got := <-requests
			require.Equal(t, http.MethodPost, got.method)
			require.Equal(t, "application/json", got.contentType)
			require.NotContains(t, got.body, "content")

			embeds, ok := got.body["embeds"].([]any)
			require.True(t, ok)
			require.Len(t, embeds, 1)
			first, ok := embeds[0].(map[string]any)
			require.True(t, ok)
			require.Equal(t, tt.prefix+"azalea bumped", first["description"])
			require.InDelta(t, tt.color, first["color"], 0)
		})
	}
}

func TestSendPlain(t *testing.T) {
	t.Parallel()

	srv, requests := webhook(t, http.StatusOK, `{"id":"1"}`)
	c, err := New(srv.URL, WithUsername("bump bot"))
	require.NoError(t, err)

	require.NoError(t, c.Send(context.Background(), KindPlain, "hello"))
	got := <-requests
	require.Equal(t, "hello", got.body["content"])
	require.Equal(t, "bump bot", got.body["username"])
	require.NotContains(t, got.body, "embeds")
}

func TestSendRejected(t *testing.T) {
	t.Parallel()

	srv, _ := webhook(t, http.StatusBadRequest, `{"message": "Invalid Webhook Token"}`)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = c.Send(context.Background(), KindError, "boom")
	require.ErrorIs(t, err, errUnexpectedReply)
	require.ErrorContains(t, err, "400")
	require.ErrorContains(t, err, "Invalid Webhook Token")
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	_, err := New("  ")
	require.ErrorIs(t, err, errMissingWebhook)

	c, err := New("http://127.0.0.1:1/webhook")
	require.NoError(t, err)
	require.ErrorIs(t, c.Send(context.Background(), KindInfo, " "), errEmptyMessage)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{
		"":        KindInfo,
		"success": KindSuccess,
		"WARNING": KindWarning,
		" error ": KindError,
		"plain":   KindPlain,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseKind("loud")
	require.ErrorIs(t, err, errUnknownKind)
}
