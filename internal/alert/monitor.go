package alert

import (
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/types"
	"bytes"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"runtime"
	"sync"
	"time"
)

// Notifier surfaces a detected crossing to the user.
type Notifier interface {
	Notify(ctx context.Context, event types.CrossingEvent)
}

// Monitor evaluates every tick against the store, retires fired thresholds and notifies.
type Monitor struct {
	store    *Store
	notifier Notifier

	mu          sync.Mutex
	previous    float64
	hasPrevious bool
	fromStream  bool
}

func NewMonitor(store *Store, notifier Notifier) *Monitor {
	return &Monitor{
		store:    store,
		notifier: notifier,
	}
}

// Seed sets the reference price from a REST snapshot. It is ignored once the stream has
// delivered a tick.
func (m *Monitor) Seed(price float64) {
	if !ValidPrice(price) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fromStream {
		return
	}
	m.previous = price
	m.hasPrevious = true
	log.Debugf("Alert monitor seeded with snapshot price %.2f", price)
}

// HandleTick runs the crossing check for one tick using the immediately prior tick as previous.
// It returns the crossings that were retired and notified.
func (m *Monitor) HandleTick(ctx context.Context, tick types.PriceTick) []types.CrossingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, hadPrevious := m.previous, m.hasPrevious
	m.previous = tick.Price
	m.hasPrevious = true
	m.fromStream = true

	if !hadPrevious || !m.store.NotificationsEnabled() {
		return nil
	}

	var fired []types.CrossingEvent
	for _, event := range Detect(previous, tick.Price, m.store.Thresholds()) {
		// a fired threshold must stay retired across restarts
		err := m.store.Retire(context.WithoutCancel(ctx), event.Threshold.ID)
		if errors.Is(err, ErrNotFound) {
			// deleted by the user between the snapshot and now
			continue
		} else if err != nil {
			log.Errorf("❌ Failed to persist retirement of threshold %s: %v", event.Threshold.ID, err)
		}

		log.Infof("🚨 Threshold %.2f crossed %s (%.2f -> %.2f)", event.Threshold.Price, event.Direction, previous, tick.Price)
		metrics.CrossingsDetected.WithLabelValues(string(event.Direction)).Inc()
		m.notifier.Notify(ctx, event)
		fired = append(fired, event)
	}
	return fired
}

// Run processes ticks in arrival order until ctx is cancelled or the channel closes.
func (m *Monitor) Run(ctx context.Context, ticks <-chan types.PriceTick) {
	log.Info("🚀 Alert monitor started.")
	for {
		select {
		case <-ctx.Done():
			log.Info("Alert monitor stopped.")
			return
		case tick, ok := <-ticks:
			if !ok {
				log.Info("Tick channel closed, alert monitor stopped.")
				return
			}
			if ctx.Err() != nil {
				log.Info("Alert monitor stopped.")
				return
			}
			m.safeHandle(ctx, tick)
		}
	}
}

func (m *Monitor) safeHandle(ctx context.Context, tick types.PriceTick) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("🔥 Recovered from panic in alert monitor at %s: %v\nStack trace: %s", time.Now().Format(time.RFC3339), r, stackTrace)
		}
	}()

	m.HandleTick(ctx, tick)
}
