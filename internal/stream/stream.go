package stream

import (
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/types"
	"context"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const defaultReconnectDelay = 5 * time.Second

// Stream keeps one websocket connection to a market-data stream and fans ticks out to
// subscribers. It reconnects after a fixed delay when the connection drops.
type Stream struct {
	url            string
	symbol         string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer

	mu        sync.RWMutex
	latest    types.PriceTick
	hasLatest bool

	subsMu sync.Mutex
	subs   []chan types.PriceTick
	done   bool
}

func New(url, symbol string, reconnectDelay time.Duration) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	return &Stream{
		url:            url,
		symbol:         symbol,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
	}
}

// Subscribe returns a channel receiving every tick. A subscriber that falls behind misses ticks.
// The channel is closed when Run returns.
func (s *Stream) Subscribe(buffer int) <-chan types.PriceTick {
	ch := make(chan types.PriceTick, buffer)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.done {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Latest returns the last received tick. ok is false before the first tick and after a
// transport error until the next tick arrives.
func (s *Stream) Latest() (types.PriceTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

// Run maintains the connection until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) {
	defer s.closeSubscribers()

	log.Infof("🚀 Price stream started for %s.", s.symbol)
	for {
		err := s.connectAndListen(ctx)
		if ctx.Err() != nil {
			log.Info("Price stream stopped.")
			return
		}
		if err != nil {
			log.Errorf("❌ Price stream connection lost: %v", err)
		}
		s.markUnknown()

		log.Infof("Reconnecting to price stream in %s...", s.reconnectDelay)
		select {
		case <-ctx.Done():
			log.Info("Price stream stopped.")
			return
		case <-time.After(s.reconnectDelay):
			metrics.StreamReconnects.Inc()
		}
	}
}

func (s *Stream) connectAndListen(ctx context.Context) error {
	log.Debugf("Connecting to price stream %s", s.url)

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return errors.Wrap(err, "dial failed")
	}
	defer conn.Close()

	// unblock ReadMessage on shutdown
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	log.Infof("✅ Connected to price stream %s", s.url)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read error")
		}
		if ctx.Err() != nil {
			return nil
		}

		tick, err := parseTick(message, s.symbol, time.Now().UTC())
		if err != nil {
			log.Debugf("Skipping stream message: %v", err)
			continue
		}

		s.publish(tick)
	}
}

func (s *Stream) publish(tick types.PriceTick) {
	s.mu.Lock()
	s.latest = tick
	s.hasLatest = true
	s.mu.Unlock()

	metrics.TicksReceived.Inc()
	metrics.CurrentPrice.Set(tick.Price)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- tick:
		default:
			log.Warnf("[!] subscriber lagging, dropping tick %.2f", tick.Price)
		}
	}
}

func (s *Stream) markUnknown() {
	s.mu.Lock()
	s.hasLatest = false
	s.mu.Unlock()
}

func (s *Stream) closeSubscribers() {
	s.markUnknown()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.done = true
}
