package alert

import (
	"btc-dca-dashboard/internal/types"
	"context"
	"fmt"
	"sync"
	"testing"
)

// memoryPrefs is an in-memory Preferences implementation.
type memoryPrefs struct {
	mu      sync.Mutex
	values  map[string]string
	failSet bool
	writes  int
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string]string)}
}

func (p *memoryPrefs) GetPreference(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *memoryPrefs) SetPreference(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSet {
		return fmt.Errorf("disk full")
	}
	p.values[key] = value
	p.writes++
	return nil
}

type recordingNotifier struct {
	events []types.CrossingEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event types.CrossingEvent) {
	n.events = append(n.events, event)
}

func prices(thresholds []types.Threshold) []float64 {
	out := make([]float64, len(thresholds))
	for i, t := range thresholds {
		out[i] = t.Price
	}
	return out
}

func equalPrices(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newEnabledStore(t *testing.T, values ...float64) (*Store, *memoryPrefs) {
	t.Helper()
	prefs := newMemoryPrefs()
	store := NewStore(prefs)
	ctx := context.Background()
	if err := store.SetNotificationsEnabled(ctx, true); err != nil {
		t.Fatalf("SetNotificationsEnabled: %v", err)
	}
	for _, v := range values {
		if _, err := store.Add(ctx, v); err != nil {
			t.Fatalf("Add(%v): %v", v, err)
		}
	}
	return store, prefs
}
