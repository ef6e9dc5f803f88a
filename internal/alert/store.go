package alert

import (
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/types"
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"math"
	"strconv"
	"sync"
	"time"
)

const (
	alertsKey        = "price_alerts"
	notificationsKey = "notifications_enabled"
)

var (
	ErrInvalidPrice = errors.New("price must be a finite positive number")
	ErrNotFound     = errors.New("threshold not found")
)

// Preferences is the durable key/value storage behind the store.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Store owns the ordered set of active thresholds and the notification flag.
// Every mutation writes the full record before it becomes visible.
type Store struct {
	prefs Preferences
	now   func() time.Time

	mu         sync.RWMutex
	thresholds []types.Threshold
	enabled    bool
}

func NewStore(prefs Preferences) *Store {
	return &Store{
		prefs:      prefs,
		now:        time.Now,
		thresholds: []types.Threshold{},
	}
}

// ValidPrice reports whether p can be used as a threshold.
func ValidPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// Load rehydrates thresholds and the notification flag. Absent or malformed records fall back
// to the empty defaults; only a failing storage read is returned.
func (s *Store) Load(ctx context.Context) error {
	rawAlerts, found, err := s.prefs.GetPreference(ctx, alertsKey)
	if err != nil {
		return errors.Wrap(err, "could not load price alerts")
	}
	thresholds := []types.Threshold{}
	if found {
		thresholds = s.decodeThresholds(rawAlerts)
	}

	rawEnabled, found, err := s.prefs.GetPreference(ctx, notificationsKey)
	if err != nil {
		return errors.Wrap(err, "could not load notification flag")
	}
	enabled := false
	if found {
		if err := json.Unmarshal([]byte(rawEnabled), &enabled); err != nil {
			log.Warnf("Discarding malformed %s record %q: %v", notificationsKey, rawEnabled, err)
			enabled = false
		}
	}

	s.mu.Lock()
	s.thresholds = thresholds
	s.enabled = enabled
	s.mu.Unlock()

	metrics.ActiveThresholds.Set(float64(len(thresholds)))
	log.Infof("Loaded %d price alerts, notifications enabled: %t", len(thresholds), enabled)
	return nil
}

func (s *Store) decodeThresholds(raw string) []types.Threshold {
	var stored []types.Threshold
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// Older records hold a bare list of prices.
		var prices []float64
		if errLegacy := json.Unmarshal([]byte(raw), &prices); errLegacy != nil {
			log.Warnf("Discarding malformed %s record: %v", alertsKey, err)
			return []types.Threshold{}
		}
		for _, p := range prices {
			stored = append(stored, types.Threshold{Price: p})
		}
	}

	thresholds := make([]types.Threshold, 0, len(stored))
	for _, t := range stored {
		if !ValidPrice(t.Price) {
			log.Warnf("Dropping stored threshold with invalid price %v", t.Price)
			continue
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		thresholds = append(thresholds, t)
	}
	return thresholds
}

// Thresholds returns a copy of the active set in insertion order.
func (s *Store) Thresholds() []types.Threshold {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Threshold, len(s.thresholds))
	copy(out, s.thresholds)
	return out
}

func (s *Store) NotificationsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

func (s *Store) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.SetPreference(ctx, notificationsKey, strconv.FormatBool(enabled)); err != nil {
		return errors.Wrap(err, "could not persist notification flag")
	}
	s.enabled = enabled
	return nil
}

// Add appends a threshold at the end of the set.
func (s *Store) Add(ctx context.Context, price float64) (types.Threshold, error) {
	if !ValidPrice(price) {
		return types.Threshold{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := types.Threshold{
		ID:        uuid.NewString(),
		Price:     price,
		CreatedAt: s.now(),
	}
	next := make([]types.Threshold, 0, len(s.thresholds)+1)
	next = append(next, s.thresholds...)
	next = append(next, t)

	if err := s.commit(ctx, next); err != nil {
		return types.Threshold{}, err
	}
	return t, nil
}

// Edit replaces the price of the threshold at index.
func (s *Store) Edit(ctx context.Context, index int, price float64) (types.Threshold, error) {
	if !ValidPrice(price) {
		return types.Threshold{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.thresholds) {
		return types.Threshold{}, ErrNotFound
	}
	return s.editAt(ctx, index, price)
}

func (s *Store) EditByID(ctx context.Context, id string, price float64) (types.Threshold, error) {
	if !ValidPrice(price) {
		return types.Threshold{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return types.Threshold{}, ErrNotFound
	}
	return s.editAt(ctx, index, price)
}

func (s *Store) editAt(ctx context.Context, index int, price float64) (types.Threshold, error) {
	next := make([]types.Threshold, len(s.thresholds))
	copy(next, s.thresholds)
	next[index].Price = price

	if err := s.commit(ctx, next); err != nil {
		return types.Threshold{}, err
	}
	return next[index], nil
}

// Remove deletes the threshold at index.
func (s *Store) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.thresholds) {
		return ErrNotFound
	}
	return s.commit(ctx, without(s.thresholds, index))
}

func (s *Store) RemoveByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return ErrNotFound
	}
	return s.commit(ctx, without(s.thresholds, index))
}

// RemoveByValue deletes the first threshold whose price equals price. Only one instance is
// removed per call when several thresholds share a value.
func (s *Store) RemoveByValue(ctx context.Context, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.thresholds {
		if t.Price == price {
			return s.commit(ctx, without(s.thresholds, i))
		}
	}
	return ErrNotFound
}

// Retire removes a fired threshold. Unlike RemoveByID the in-memory removal stands even when
// the write fails, so a threshold can never fire twice.
func (s *Store) Retire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return ErrNotFound
	}
	next := without(s.thresholds, index)
	err := s.commit(ctx, next)
	if err != nil {
		s.thresholds = next
		metrics.ActiveThresholds.Set(float64(len(next)))
	}
	return err
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.thresholds {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, next []types.Threshold) error {
	data, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "could not encode price alerts")
	}
	if err := s.prefs.SetPreference(ctx, alertsKey, string(data)); err != nil {
		return errors.Wrap(err, "could not persist price alerts")
	}

	s.thresholds = next
	metrics.ActiveThresholds.Set(float64(len(next)))
	return nil
}

func without(thresholds []types.Threshold, index int) []types.Threshold {
	next := make([]types.Threshold, 0, len(thresholds)-1)
	next = append(next, thresholds[:index]...)
	return append(next, thresholds[index+1:]...)
}
