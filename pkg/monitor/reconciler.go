package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// Notifier reports operator lifecycle actions back to the gateway. Calls are
// fire-and-forget from the reconciler's point of view: failures are logged
// and the next snapshot poll reconciles any divergence.
type Notifier interface {
	NotifyHandled(ctx context.Context, alertID string) error
	NotifyCompleted(ctx context.Context, alertID string) error
}

type entry struct {
	alert models.Alert
	// addedAt is the local arrival time. A snapshot taken before an entry
	// arrived must not evict it: the poll raced the push event.
	addedAt time.Time
}

// Reconciler owns the canonical alert set of the monitoring console. It
// merges the periodic snapshot feed and the push event feed idempotently,
// drives the audible alarm state machine, and issues lifecycle notifications
// back to the gateway.
//
// All mutations run serially under one mutex and never perform I/O while
// holding it; notification calls happen on their own goroutines.
type Reconciler struct {
	mu       sync.Mutex
	entries  map[string]*entry
	selected string
	sounding bool

	alarm    Alarm
	notifier Notifier
	now      func() time.Time
}

// NewReconciler creates a reconciler with an empty canonical set.
func NewReconciler(alarm Alarm, notifier Notifier) *Reconciler {
	return &Reconciler{
		entries:  make(map[string]*entry),
		alarm:    alarm,
		notifier: notifier,
		now:      time.Now,
	}
}

// ApplyEvent merges one push-delivered alert into the canonical set. A
// duplicate alert id is a no-op, which makes at-least-once delivery safe.
// New alerts always enter in status New regardless of the payload status.
func (r *Reconciler) ApplyEvent(alert models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[alert.AlertID]; ok {
		return
	}
	alert.Status = models.AlertStatusNew
	r.entries[alert.AlertID] = &entry{alert: alert, addedAt: r.now()}
	logrus.Infof("Alert %s arrived via push", alert.AlertID)
	r.syncAlarm()
}

// ApplySnapshot merges a full poll result into the canonical set. The merge
// is a union, never a destructive replace:
//
//   - ids present in both: status and handled time take the snapshot's values
//     (the snapshot is authoritative; another operator may have acted), except
//     that a handled timestamp, once set, is never cleared;
//   - ids only in the snapshot: inserted;
//   - ids only in canonical: removed as completed server-side, unless they
//     arrived after takenAt — those are event-sourced inserts the snapshot
//     simply could not have seen yet.
func (r *Reconciler) ApplySnapshot(alerts []models.Alert, takenAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(alerts))
	for _, alert := range alerts {
		seen[alert.AlertID] = true

		if alert.Status == models.AlertStatusCompleted {
			r.remove(alert.AlertID)
			continue
		}
		if existing, ok := r.entries[alert.AlertID]; ok {
			existing.alert.Status = alert.Status
			if existing.alert.TimestampHandled == nil {
				existing.alert.TimestampHandled = alert.TimestampHandled
			}
			continue
		}
		r.entries[alert.AlertID] = &entry{alert: alert, addedAt: takenAt}
	}

	for id, e := range r.entries {
		if !seen[id] && !e.addedAt.After(takenAt) {
			r.remove(id)
		}
	}
	r.syncAlarm()
}

// SelectAlert records the operator's selection and transitions the alert
// New -> Handled. The handled timestamp is set at most once, and the handled
// notification goes out asynchronously. Selecting an already-handled alert
// only updates the selection.
func (r *Reconciler) SelectAlert(alertID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[alertID]
	if !ok {
		return
	}
	r.selected = alertID
	if e.alert.Status != models.AlertStatusNew {
		return
	}
	e.alert.Status = models.AlertStatusHandled
	if e.alert.TimestampHandled == nil {
		handledAt := r.now()
		e.alert.TimestampHandled = &handledAt
	}
	go r.notifyHandled(alertID)
	r.syncAlarm()
}

// CompleteAlert removes the alert from the canonical set immediately and
// notifies the gateway asynchronously. The removal is optimistic: the
// operator is never blocked on a slow backend, and a later snapshot corrects
// any divergence.
func (r *Reconciler) CompleteAlert(alertID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[alertID]; !ok {
		return
	}
	r.remove(alertID)
	go r.notifyCompleted(alertID)
	r.syncAlarm()
}

// CurrentAlerts returns the live alert list ordered by raise time ascending,
// alert id as tie-break.
func (r *Reconciler) CurrentAlerts() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	alerts := make([]models.Alert, 0, len(r.entries))
	for _, e := range r.entries {
		alerts = append(alerts, e.alert)
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Timestamp.Equal(alerts[j].Timestamp) {
			return alerts[i].AlertID < alerts[j].AlertID
		}
		return alerts[i].Timestamp.Before(alerts[j].Timestamp)
	})
	return alerts
}

// Selected returns the currently selected alert, if any.
func (r *Reconciler) Selected() (models.Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[r.selected]
	if !ok {
		return models.Alert{}, false
	}
	return e.alert, true
}

// Sounding reports the audible alarm state.
func (r *Reconciler) Sounding() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sounding
}

// remove deletes an entry and clears a dangling selection. Caller holds the lock.
func (r *Reconciler) remove(alertID string) {
	delete(r.entries, alertID)
	if r.selected == alertID {
		r.selected = ""
	}
}

// syncAlarm enforces the invariant: the alarm sounds iff at least one alert
// is in status New. Caller holds the lock.
func (r *Reconciler) syncAlarm() {
	hasNew := false
	for _, e := range r.entries {
		if e.alert.Status == models.AlertStatusNew {
			hasNew = true
			break
		}
	}
	if hasNew && !r.sounding {
		r.sounding = true
		r.alarm.Start()
	} else if !hasNew && r.sounding {
		r.sounding = false
		r.alarm.Stop()
	}
}

func (r *Reconciler) notifyHandled(alertID string) {
	if err := r.notifier.NotifyHandled(context.Background(), alertID); err != nil {
		logrus.Errorf("Failed to notify handled for alert %s: %v", alertID, err)
	}
}

func (r *Reconciler) notifyCompleted(alertID string) {
	if err := r.notifier.NotifyCompleted(context.Background(), alertID); err != nil {
		logrus.Errorf("Failed to notify completion for alert %s: %v", alertID, err)
	}
}
