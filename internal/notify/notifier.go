package notify

import (
	"btc-dca-dashboard/internal/events"
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/telegram"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"btc-dca-dashboard/lib/translation"
	"context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const (
	ChannelToast    = "toast"
	ChannelSound    = "sound"
	ChannelTelegram = "telegram"

	backgroundTimeout = 30 * time.Second
)

// Publisher delivers events to connected browsers.
type Publisher interface {
	Publish(event events.Event)
}

// Sender delivers a chat message.
type Sender interface {
	SendMessage(m telegram.Message) error
}

// Toast is the payload of a toast event. The browser renders it and plays the cue.
type Toast struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Direction    types.Direction `json:"direction"`
	Cue          string          `json:"cue"`
	Threshold    float64         `json:"threshold"`
	Price        float64         `json:"price"`
	DismissAfter int64           `json:"dismiss_after_ms"`
}

// Notifier turns crossing events into a toast, an optional chat message and an optional
// audio cue. Only the toast is published synchronously.
type Notifier struct {
	hub          Publisher
	dismissAfter time.Duration

	sender Sender
	chatID int64
	player CuePlayer

	wg sync.WaitGroup
}

func NewNotifier(hub Publisher, dismissAfter time.Duration) *Notifier {
	return &Notifier{hub: hub, dismissAfter: dismissAfter}
}

func (n *Notifier) WithTelegram(sender Sender, chatID int64) *Notifier {
	n.sender = sender
	n.chatID = chatID
	return n
}

func (n *Notifier) WithCuePlayer(player CuePlayer) *Notifier {
	n.player = player
	return n
}

func (n *Notifier) Notify(_ context.Context, event types.CrossingEvent) {
	toast := BuildToast(event, n.dismissAfter)
	n.hub.Publish(events.Event{Type: events.TypeToast, Data: toast})
	metrics.NotificationsSent.WithLabelValues(ChannelToast).Inc()

	if n.player != nil {
		n.background(ChannelSound, func(ctx context.Context) error {
			return n.player.Play(ctx, toast.Cue)
		})
	}
	if n.sender != nil {
		text := toast.Title + "\n" + toast.Description
		n.background(ChannelTelegram, func(context.Context) error {
			return n.sender.SendMessage(telegram.Message{ChatID: n.chatID, Text: text})
		})
	}
}

// Wait blocks until every in-flight cue and chat delivery has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) background(channel string, deliver func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := deliver(ctx); err != nil {
			log.Errorf("❌ %s notification failed: %v", channel, err)
			metrics.NotificationFailures.WithLabelValues(channel).Inc()
			return
		}
		metrics.NotificationsSent.WithLabelValues(channel).Inc()
	}()
}

// BuildToast renders the translated title and description of a crossing.
func BuildToast(event types.CrossingEvent, dismissAfter time.Duration) Toast {
	key := "alert_crossed_up"
	if event.Direction == types.Down {
		key = "alert_crossed_down"
	}

	return Toast{
		ID:    uuid.NewString(),
		Title: translation.Translate("alert_title"),
		Description: translation.Translate(
			key,
			helpers.FormatPriceUS(event.Threshold.Price, false),
			helpers.FormatPriceUS(event.Current, false),
		),
		Direction:    event.Direction,
		Cue:          string(event.Direction),
		Threshold:    event.Threshold.Price,
		Price:        event.Current,
		DismissAfter: dismissAfter.Milliseconds(),
	}
}
