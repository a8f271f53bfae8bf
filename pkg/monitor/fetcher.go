package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// SnapshotFetcher polls the gateway for the full set of open alerts on a
// fixed interval and proposes each result to the reconciler. It holds no
// state of its own and never mutates the canonical set directly. A failed
// poll is logged and simply retried on the next tick; staleness is bounded
// by the push feed.
type SnapshotFetcher struct {
	baseURL    string
	interval   time.Duration
	client     *http.Client
	reconciler *Reconciler
}

// NewSnapshotFetcher creates a fetcher polling baseURL every interval.
func NewSnapshotFetcher(baseURL string, interval time.Duration, reconciler *Reconciler) *SnapshotFetcher {
	return &SnapshotFetcher{
		baseURL:    baseURL,
		interval:   interval,
		client:     &http.Client{Timeout: 10 * time.Second},
		reconciler: reconciler,
	}
}

// Run polls until the context is cancelled. The first poll happens
// immediately so the console does not start on an empty screen.
func (f *SnapshotFetcher) Run(ctx context.Context) {
	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-ctx.Done():
			logrus.Info("Snapshot fetcher stopped")
			return
		}
	}
}

func (f *SnapshotFetcher) poll(ctx context.Context) {
	takenAt := time.Now()
	alerts, err := f.fetch(ctx)
	if err != nil {
		logrus.Errorf("Snapshot poll failed: %v", err)
		return
	}
	f.reconciler.ApplySnapshot(alerts, takenAt)
}

func (f *SnapshotFetcher) fetch(ctx context.Context) ([]models.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/unhandled-alerts", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request returned status %d", resp.StatusCode)
	}

	var alerts []models.Alert
	if err := json.NewDecoder(resp.Body).Decode(&alerts); err != nil {
		return nil, fmt.Errorf("malformed snapshot body: %w", err)
	}
	for i := range alerts {
		if err := alerts[i].Normalize(); err != nil {
			return nil, fmt.Errorf("malformed snapshot alert %s: %w", alerts[i].AlertID, err)
		}
	}
	return alerts, nil
}
