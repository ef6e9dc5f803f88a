package history

import (
	"btc-dca-dashboard/internal/types"
	"sync"
	"time"
)

// RingBuffer keeps the most recent ticks within a fixed size and TTL.
type RingBuffer struct {
	data  []types.PriceTick
	head  int
	count int
	ttl   time.Duration
	mutex sync.Mutex
}

func NewRingBuffer(size int, ttl time.Duration) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{
		data: make([]types.PriceTick, size),
		ttl:  ttl,
	}
}

// Add inserts a tick, overwriting the oldest when full.
func (rb *RingBuffer) Add(tick types.PriceTick) {
	rb.mutex.Lock()
	defer rb.mutex.Unlock()

	idx := (rb.head + rb.count) % len(rb.data)
	rb.data[idx] = tick

	if rb.count < len(rb.data) {
		rb.count++
	} else {
		rb.head = (rb.head + 1) % len(rb.data)
	}
}

// Since returns ticks at or after since that have not expired, oldest first.
func (rb *RingBuffer) Since(since time.Time) []types.PriceTick {
	rb.mutex.Lock()
	defer rb.mutex.Unlock()

	result := []types.PriceTick{}
	now := time.Now().UTC()

	for i := 0; i < rb.count; i++ {
		t := rb.data[(rb.head+i)%len(rb.data)]

		if t.Timestamp.Before(since) {
			continue
		}
		if rb.ttl > 0 && now.Sub(t.Timestamp) > rb.ttl {
			continue
		}
		result = append(result, t)
	}

	return result
}
