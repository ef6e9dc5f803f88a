package alert

import (
	"btc-dca-dashboard/internal/types"
	"testing"
)

func TestDetect(t *testing.T) {
	threshold := []types.Threshold{{ID: "a", Price: 30000}}

	tests := []struct {
		name      string
		previous  float64
		current   float64
		direction types.Direction
		crossed   bool
	}{
		{"upward through", 29950, 30050, types.Up, true},
		{"downward through", 30050, 29950, types.Down, true},
		{"upward onto threshold", 29950, 30000, types.Up, true},
		{"downward onto threshold", 30050, 30000, types.Down, true},
		{"leaving threshold upward", 30000, 30050, "", false},
		{"leaving threshold downward", 30000, 29950, "", false},
		{"unchanged price", 29950, 29950, "", false},
		{"unchanged on threshold", 30000, 30000, "", false},
		{"below without crossing", 29000, 29950, "", false},
		{"above without crossing", 31000, 30050, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Detect(tt.previous, tt.current, threshold)
			if !tt.crossed {
				if len(events) != 0 {
					t.Fatalf("expected no crossing, got %v", events)
				}
				return
			}
			if len(events) != 1 {
				t.Fatalf("expected one crossing, got %d", len(events))
			}
			if events[0].Direction != tt.direction {
				t.Errorf("expected direction %s, got %s", tt.direction, events[0].Direction)
			}
			if events[0].Threshold.Price != 30000 || events[0].Previous != tt.previous || events[0].Current != tt.current {
				t.Errorf("unexpected event %+v", events[0])
			}
		})
	}
}

func TestDetectPreservesInsertionOrder(t *testing.T) {
	thresholds := []types.Threshold{
		{ID: "c", Price: 30500},
		{ID: "a", Price: 30100},
		{ID: "b", Price: 30300},
		{ID: "x", Price: 32000},
	}

	events := Detect(30000, 31000, thresholds)
	if len(events) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(events))
	}
	for i, id := range []string{"c", "a", "b"} {
		if events[i].Threshold.ID != id {
			t.Errorf("event %d: expected threshold %s, got %s", i, id, events[i].Threshold.ID)
		}
	}
}
