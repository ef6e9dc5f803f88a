package telegram

import (
	"btc-dca-dashboard/internal/alert"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"btc-dca-dashboard/lib/translation"
	"context"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"regexp"
	"strconv"
	"strings"
)

// AlertStore is the part of alert.Store the chat commands use.
type AlertStore interface {
	Thresholds() []types.Threshold
	Add(ctx context.Context, price float64) (types.Threshold, error)
	Remove(ctx context.Context, index int) error
	NotificationsEnabled() bool
	SetNotificationsEnabled(ctx context.Context, enabled bool) error
}

func ParseArguments(args string) (string, string) {
	re := regexp.MustCompile(`^(\S+)\s*(.+)?$`)
	matches := re.FindStringSubmatch(strings.TrimSpace(args))

	if len(matches) >= 2 {
		action := matches[1]
		value := ""
		if len(matches) == 3 {
			value = strings.TrimSpace(matches[2])
		}
		return action, value
	}
	return "", ""
}

func (b *Bot) commandPrice() string {
	tick, ok := b.prices.Latest()
	if !ok {
		return translation.Translate("price_unknown")
	}
	return fmt.Sprintf(
		translation.Translate("price_message"),
		tick.Symbol,
		helpers.FormatPriceUS(tick.Price, false),
		tick.ChangePercent,
	)
}

// commandAlert handles "/alert <price>", "/alert list" and "/alert remove <n>" where n is the
// 1-based position shown by the list.
func (b *Bot) commandAlert(ctx context.Context, args string) string {
	action, value := ParseArguments(args)

	switch action {
	case "":
		return translation.Translate("alert_command_usage")
	case "list":
		return b.commandAlertList()
	case "remove", "rm":
		n, err := strconv.Atoi(value)
		if err != nil {
			return translation.Translate("alert_command_usage")
		}
		if err := b.alerts.Remove(ctx, n-1); err != nil {
			if errors.Is(err, alert.ErrNotFound) {
				return translation.Translate("alert_not_found")
			}
			log.Error(err)
			return translation.Translate("alert_save_failed")
		}
		return fmt.Sprintf(translation.Translate("alert_removed"), n)
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(action, "$"), ",", ""), 64)
	if err != nil {
		return translation.Translate("invalid_price_target")
	}
	t, err := b.alerts.Add(ctx, price)
	if err != nil {
		if errors.Is(err, alert.ErrInvalidPrice) {
			return translation.Translate("invalid_price_target")
		}
		log.Error(err)
		return translation.Translate("alert_save_failed")
	}
	return fmt.Sprintf(translation.Translate("alert_set_success"), helpers.FormatPriceUS(t.Price, false))
}

func (b *Bot) commandAlertList() string {
	thresholds := b.alerts.Thresholds()
	if len(thresholds) == 0 {
		return translation.Translate("no_active_alerts")
	}

	var list strings.Builder
	list.WriteString(translation.Translate("active_alerts_list_header"))
	for i, t := range thresholds {
		list.WriteString(fmt.Sprintf(
			translation.Translate("alert_list_item_format"),
			i+1,
			helpers.FormatPriceUS(t.Price, false),
			t.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	return list.String()
}

func (b *Bot) commandNotify(ctx context.Context, args string) string {
	var enabled bool
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return notificationState(b.alerts.NotificationsEnabled())
	}

	if err := b.alerts.SetNotificationsEnabled(ctx, enabled); err != nil {
		log.Error(err)
		return translation.Translate("alert_save_failed")
	}
	return notificationState(enabled)
}

func notificationState(enabled bool) string {
	if enabled {
		return translation.Translate("notifications_on")
	}
	return translation.Translate("notifications_off")
}
