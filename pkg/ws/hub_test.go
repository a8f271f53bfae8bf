package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

func dialTestHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsOneAlertPerMessage(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	first := dialTestHub(t, server)
	second := dialTestHub(t, server)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	alert := &models.Alert{
		AlertID:       "a1",
		AccountNumber: "100001",
		Timestamp:     time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Status:        models.AlertStatusNew,
	}
	hub.BroadcastAlert(alert)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got models.Alert
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "a1", got.AlertID)
		assert.Equal(t, models.AlertStatusNew, got.Status)
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialTestHub(t, server)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
