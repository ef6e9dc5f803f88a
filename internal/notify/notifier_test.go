package notify

import (
	"btc-dca-dashboard/internal/events"
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/telegram"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/translation"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func init() {
	translation.Configure("../../locales", "en")
}

type recordingSender struct {
	mu       sync.Mutex
	messages []telegram.Message
	err      error
}

func (s *recordingSender) SendMessage(m telegram.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return s.err
}

type recordingPlayer struct {
	mu   sync.Mutex
	cues []string
	err  error
}

func (p *recordingPlayer) Play(_ context.Context, cue string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = append(p.cues, cue)
	return p.err
}

func crossing(direction types.Direction) types.CrossingEvent {
	return types.CrossingEvent{
		Threshold: types.Threshold{ID: "t1", Price: 30000},
		Direction: direction,
		Previous:  29950,
		Current:   30050,
	}
}

func TestNotifyPublishesToast(t *testing.T) {
	hub := events.NewHub()
	client := events.NewClientWithBuffer(4)
	hub.Register(client)
	defer hub.Unregister(client)

	sender := &recordingSender{}
	player := &recordingPlayer{}
	n := NewNotifier(hub, 5*time.Second).WithTelegram(sender, 42).WithCuePlayer(player)

	n.Notify(context.Background(), crossing(types.Up))
	n.Wait()

	select {
	case event := <-client.Chan:
		toast, ok := event.Data.(Toast)
		if event.Type != events.TypeToast || !ok {
			t.Fatalf("expected toast event, got %+v", event)
		}
		if toast.Direction != types.Up || toast.Cue != "up" || toast.DismissAfter != 5000 {
			t.Errorf("unexpected toast %+v", toast)
		}
		if !strings.Contains(toast.Description, "30,000") || !strings.Contains(toast.Description, "30,050") {
			t.Errorf("expected threshold and price in description, got %q", toast.Description)
		}
	default:
		t.Fatal("expected a toast event")
	}

	if len(sender.messages) != 1 || sender.messages[0].ChatID != 42 {
		t.Errorf("expected one telegram message to chat 42, got %+v", sender.messages)
	}
	if len(player.cues) != 1 || player.cues[0] != "up" {
		t.Errorf("expected up cue, got %v", player.cues)
	}
}

func TestNotifyFailuresAreCounted(t *testing.T) {
	hub := events.NewHub()
	client := events.NewClientWithBuffer(4)
	hub.Register(client)
	defer hub.Unregister(client)

	soundFailures := metrics.GetMetricValue(metrics.NotificationFailures.WithLabelValues(ChannelSound))
	telegramFailures := metrics.GetMetricValue(metrics.NotificationFailures.WithLabelValues(ChannelTelegram))

	n := NewNotifier(hub, time.Second).
		WithTelegram(&recordingSender{err: fmt.Errorf("chat not found")}, 1).
		WithCuePlayer(&recordingPlayer{err: fmt.Errorf("no audio device")})

	n.Notify(context.Background(), crossing(types.Down))
	n.Wait()

	if len(client.Chan) != 1 {
		t.Fatalf("toast must be published even when other channels fail, got %d events", len(client.Chan))
	}
	if got := metrics.GetMetricValue(metrics.NotificationFailures.WithLabelValues(ChannelSound)); got != soundFailures+1 {
		t.Errorf("expected sound failure to be counted, got %f", got)
	}
	if got := metrics.GetMetricValue(metrics.NotificationFailures.WithLabelValues(ChannelTelegram)); got != telegramFailures+1 {
		t.Errorf("expected telegram failure to be counted, got %f", got)
	}
}

func TestBuildToastDown(t *testing.T) {
	toast := BuildToast(crossing(types.Down), 0)
	if toast.Cue != "down" || toast.ID == "" || toast.Title == "" {
		t.Errorf("unexpected toast %+v", toast)
	}
	if !strings.Contains(toast.Description, "$30,000") || !strings.Contains(toast.Description, "$30,050") {
		t.Errorf("expected formatted prices in description, got %q", toast.Description)
	}
	if strings.Contains(toast.Description, "%!") {
		t.Errorf("description has unfilled verbs: %q", toast.Description)
	}
}

func TestCommandPlayer(t *testing.T) {
	ctx := context.Background()
	files := map[string]string{"up": "up.mp3"}

	if err := NewCommandPlayer("true", files).Play(ctx, "up"); err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if err := NewCommandPlayer("false", files).Play(ctx, "up"); err == nil {
		t.Error("expected failing command to return an error")
	}
	if err := NewCommandPlayer("true", files).Play(ctx, "down"); err == nil {
		t.Error("expected unknown cue to return an error")
	}
}
