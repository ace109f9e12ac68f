package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSend(t *testing.T) {
	var gotKey string
	var gotMsg Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messageId":"msg-123"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	result, err := client.Send(context.Background(), Message{
		To:          "purchasing@goldensands.example",
		Subject:     "Invoice FTIN0042 from FT Gifting",
		HTMLContent: "<p>hi</p>",
		PDFBase64:   "AAAA",
		PDFFileName: "Invoice-FTIN0042.pdf",
	})
	require.NoError(t, err)
	require.Equal(t, "msg-123", result.MessageID)
	require.Equal(t, "secret-key", gotKey)
	require.Equal(t, "purchasing@goldensands.example", gotMsg.To)
	require.Equal(t, "Invoice-FTIN0042.pdf", gotMsg.PDFFileName)
}

func TestClientSendRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"provider unavailable","details":"upstream timeout"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	_, err := client.Send(context.Background(), Message{To: "x@example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "provider unavailable")
	require.Contains(t, err.Error(), "upstream timeout")
}

func TestClientSendOpaqueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	_, err := client.Send(context.Background(), Message{To: "x@example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}
