package poller

import (
	"btc-dca-dashboard/internal/metrics"
	"context"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const fetchTimeout = 10 * time.Second

// FetchFunc loads one fresh value from a remote source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller refreshes a value on a fixed interval and keeps the last good one. A failed poll
// leaves the previous value in place.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]

	mu        sync.RWMutex
	value     T
	updatedAt time.Time
	ok        bool
	listeners []func(T)
}

func New[T any](name string, interval time.Duration, fetch FetchFunc[T]) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
	}
}

// OnUpdate registers fn to run after every successful poll. Register before Run.
func (p *Poller[T]) OnUpdate(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Latest returns the last good value and when it was fetched.
func (p *Poller[T]) Latest() (T, time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, p.updatedAt, p.ok
}

// Poll fetches once.
func (p *Poller[T]) Poll(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("🔥 Panic recovered in %s poller: %v", p.name, r)
			metrics.PollErrors.WithLabelValues(p.name).Inc()
			err = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	value, err := p.fetch(ctx)
	if err != nil {
		metrics.PollErrors.WithLabelValues(p.name).Inc()
		return err
	}

	p.mu.Lock()
	p.value = value
	p.updatedAt = time.Now()
	p.ok = true
	listeners := p.listeners
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
	return nil
}

// Run polls immediately and then on every interval until ctx is cancelled.
func (p *Poller[T]) Run(ctx context.Context) {
	log.Infof("🚀 %s poller started, refreshing every %s.", p.name, p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorf("❌ Failed to refresh %s: %v", p.name, err)
		} else {
			log.Debugf("✅ %s updated successfully.", p.name)
		}

		select {
		case <-ctx.Done():
			log.Infof("%s poller stopped.", p.name)
			return
		case <-ticker.C:
		}
	}
}
