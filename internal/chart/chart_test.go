package chart

import (
	"btc-dca-dashboard/internal/types"
	"bytes"
	"errors"
	"testing"
	"time"
)

func ticks(prices ...float64) []types.PriceTick {
	start := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	out := make([]types.PriceTick, len(prices))
	for i, p := range prices {
		out[i] = types.PriceTick{Symbol: "BTCUSDT", Price: p, Timestamp: start.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(ticks(29950, 30050, 30010, 30120), Options{Title: "BTC", Width: 600, Height: 300})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("expected PNG output, got %d bytes starting with %q", len(data), data[:8])
	}
}

func TestRenderPNGFlatSeries(t *testing.T) {
	if _, err := RenderPNG(ticks(30000, 30000), Options{}); err != nil {
		t.Fatalf("RenderPNG with a flat series: %v", err)
	}
}

func TestRenderPNGNotEnoughData(t *testing.T) {
	if _, err := RenderPNG(ticks(30000), Options{}); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("expected ErrNotEnoughData, got %v", err)
	}
}

func TestTimeFormat(t *testing.T) {
	start := time.Now()
	if got := timeFormat([]time.Time{start, start.Add(time.Hour)}); got != "15:04" {
		t.Errorf("expected intraday format, got %q", got)
	}
	if got := timeFormat([]time.Time{start, start.Add(48 * time.Hour)}); got != "02-Jan" {
		t.Errorf("expected daily format, got %q", got)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(50 * time.Millisecond)
	if _, ok := c.Get("1h"); ok {
		t.Fatal("expected empty cache")
	}

	c.Set("1h", []byte("png"))
	if data, ok := c.Get("1h"); !ok || string(data) != "png" {
		t.Fatalf("expected cached data, got %q %v", data, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("1h"); ok {
		t.Error("expected entry to expire")
	}
}
