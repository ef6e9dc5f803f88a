package alert

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestAddPreservesOrder(t *testing.T) {
	store, _ := newEnabledStore(t, 30000)

	if _, err := store.Add(context.Background(), 25000); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got := prices(store.Thresholds())
	if !equalPrices(got, []float64{30000, 25000}) {
		t.Errorf("expected [30000 25000], got %v", got)
	}
}

func TestAddRejectsInvalidPrice(t *testing.T) {
	store, prefs := newEnabledStore(t, 30000)
	writes := prefs.writes

	for _, p := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := store.Add(context.Background(), p); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("Add(%v): expected ErrInvalidPrice, got %v", p, err)
		}
	}

	if !equalPrices(prices(store.Thresholds()), []float64{30000}) {
		t.Errorf("invalid input mutated the set: %v", prices(store.Thresholds()))
	}
	if prefs.writes != writes {
		t.Errorf("invalid input triggered %d writes", prefs.writes-writes)
	}
}

func TestAddThenRemoveRestoresSet(t *testing.T) {
	store, _ := newEnabledStore(t, 30000, 25000, 40000)
	ctx := context.Background()
	before := store.Thresholds()

	if _, err := store.Add(ctx, 35000); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove(ctx, len(before)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	after := store.Thresholds()
	if len(after) != len(before) {
		t.Fatalf("expected %d thresholds, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("threshold %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestEdit(t *testing.T) {
	store, _ := newEnabledStore(t, 30000, 25000)
	ctx := context.Background()
	id := store.Thresholds()[1].ID

	edited, err := store.Edit(ctx, 1, 26000)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.ID != id || edited.Price != 26000 {
		t.Errorf("unexpected edited threshold %+v", edited)
	}

	if _, err := store.Edit(ctx, 2, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for out of range index, got %v", err)
	}
	if _, err := store.Edit(ctx, -1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for negative index, got %v", err)
	}
	if _, err := store.EditByID(ctx, id, 27000); err != nil {
		t.Fatalf("EditByID: %v", err)
	}
	if _, err := store.EditByID(ctx, "missing", 27000); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}

	if !equalPrices(prices(store.Thresholds()), []float64{30000, 27000}) {
		t.Errorf("unexpected set after edits: %v", prices(store.Thresholds()))
	}
}

func TestRemoveByValueRemovesSingleInstance(t *testing.T) {
	store, _ := newEnabledStore(t, 30000, 25000, 30000)
	ctx := context.Background()

	if err := store.RemoveByValue(ctx, 30000); err != nil {
		t.Fatalf("RemoveByValue: %v", err)
	}
	if !equalPrices(prices(store.Thresholds()), []float64{25000, 30000}) {
		t.Errorf("expected [25000 30000], got %v", prices(store.Thresholds()))
	}
	if err := store.RemoveByValue(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveByID(t *testing.T) {
	store, _ := newEnabledStore(t, 30000, 25000)
	ctx := context.Background()
	id := store.Thresholds()[0].ID

	if err := store.RemoveByID(ctx, id); err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if err := store.RemoveByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second removal, got %v", err)
	}
	if err := store.Remove(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for out of range index, got %v", err)
	}
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	store, prefs := newEnabledStore(t, 30000)
	prefs.failSet = true

	if _, err := store.Add(context.Background(), 25000); err == nil {
		t.Fatal("expected persistence error")
	}
	if !equalPrices(prices(store.Thresholds()), []float64{30000}) {
		t.Errorf("failed write mutated the set: %v", prices(store.Thresholds()))
	}
}

func TestRetireRemovesEvenWhenWriteFails(t *testing.T) {
	store, prefs := newEnabledStore(t, 30000)
	id := store.Thresholds()[0].ID
	prefs.failSet = true

	if err := store.Retire(context.Background(), id); err == nil {
		t.Fatal("expected persistence error")
	}
	if len(store.Thresholds()) != 0 {
		t.Errorf("expected retired threshold to be gone, got %v", store.Thresholds())
	}
}

func TestPersistRoundTrip(t *testing.T) {
	store, prefs := newEnabledStore(t, 30000, 25000)
	ctx := context.Background()

	reloaded := NewStore(prefs)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reloaded.NotificationsEnabled() {
		t.Error("expected notifications flag to round-trip")
	}
	want, got := store.Thresholds(), reloaded.Thresholds()
	if len(want) != len(got) {
		t.Fatalf("expected %d thresholds, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i].ID != got[i].ID || want[i].Price != got[i].Price || !want[i].CreatedAt.Equal(got[i].CreatedAt) {
			t.Errorf("threshold %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if err := store.SetNotificationsEnabled(ctx, false); err != nil {
		t.Fatalf("SetNotificationsEnabled: %v", err)
	}
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.NotificationsEnabled() {
		t.Error("expected disabled flag to round-trip")
	}
}

func TestLoadMalformedState(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[alertsKey] = `{not json`
	prefs.values[notificationsKey] = `"maybe"`

	store := NewStore(prefs)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("expected malformed state to be discarded silently, got %v", err)
	}
	if got := store.Thresholds(); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
	if store.NotificationsEnabled() {
		t.Error("expected notifications disabled")
	}
}

func TestLoadAbsentState(t *testing.T) {
	store := NewStore(newMemoryPrefs())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := store.Thresholds(); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
}

func TestLoadLegacyPriceList(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[alertsKey] = `[30000, -5, 25000]`

	store := NewStore(prefs)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := store.Thresholds()
	if !equalPrices(prices(got), []float64{30000, 25000}) {
		t.Fatalf("expected [30000 25000], got %v", prices(got))
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected fresh distinct IDs, got %q and %q", got[0].ID, got[1].ID)
	}
}
