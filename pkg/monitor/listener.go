package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// EventListener maintains the push connection to the gateway. Every
// well-formed message yields exactly one insert-candidate handed to the
// reconciler; malformed messages are logged and discarded without dropping
// the connection. On connection loss it reconnects after a fixed delay —
// redelivered or missed events are safe because the reconciler is idempotent
// and the snapshot poll is the source of truth for existence.
type EventListener struct {
	wsURL          string
	reconnectDelay time.Duration
	reconciler     *Reconciler
}

// NewEventListener creates a listener for the gateway at baseURL.
func NewEventListener(baseURL string, reconnectDelay time.Duration, reconciler *Reconciler) (*EventListener, error) {
	wsURL, err := websocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &EventListener{
		wsURL:          wsURL,
		reconnectDelay: reconnectDelay,
		reconciler:     reconciler,
	}, nil
}

// Run connects and reads until the context is cancelled, reconnecting on
// connection loss.
func (l *EventListener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			logrus.Errorf("Push connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			logrus.Info("Event listener stopped")
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *EventListener) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", l.wsURL, err)
	}
	defer conn.Close()
	logrus.Infof("Push connection established to %s", l.wsURL)

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		var alert models.Alert
		if err := json.Unmarshal(message, &alert); err != nil {
			logrus.Errorf("Discarding malformed push message: %v", err)
			continue
		}
		if alert.AlertID == "" {
			logrus.Error("Discarding push message without alert_id")
			continue
		}
		l.reconciler.ApplyEvent(alert)
	}
}

// websocketURL converts the gateway base URL into the /ws endpoint URL.
func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}
