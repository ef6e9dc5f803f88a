package telegram

import (
	"btc-dca-dashboard/lib/helpers"
	"btc-dca-dashboard/lib/translation"
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if c.APIEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(c.Token, c.APIEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(c.Token)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:    bot,
		Config: c,
	}, nil
}

// WithCommands enables the chat commands backed by the alert store and the price stream.
func (b *Bot) WithCommands(alerts AlertStore, prices PriceSource) *Bot {
	b.alerts = alerts
	b.prices = prices
	return b
}

// SendMessage sends a telegram message. The text is plain and escaped for MarkdownV2 here.
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, helpers.EscapeMarkdownV2(m.Text))
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	if _, err := b.Bot.Send(msg); err != nil {
		return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
	}
	return nil
}

// Run answers chat commands until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	updates := b.Bot.GetUpdatesChan(updatesConfig)
	log.Info("Telegram bot started.")

	for {
		select {
		case <-ctx.Done():
			b.Bot.StopReceivingUpdates()
			log.Info("Telegram bot stopped.")
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Message == nil {
				continue
			}
			if b.Config.ChatID != 0 && u.Message.Chat.ID != b.Config.ChatID {
				log.Debugf("ignoring message from chat %d", u.Message.Chat.ID)
				continue
			}

			text := b.HandleUpdate(ctx, u)
			if text == "" {
				continue
			}
			if err := b.SendMessage(Message{ChatID: u.Message.Chat.ID, MessageID: u.Message.MessageID, Text: text}); err != nil {
				log.Error(err)
			}
		}
	}
}

// HandleUpdate processes Telegram updates
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) string {
	if u.Message == nil || !u.Message.IsCommand() {
		return ""
	}
	log.Debugf("received command: %s", u.Message.Command())

	if b.alerts == nil || b.prices == nil {
		return translation.Translate("Command help message")
	}

	switch u.Message.Command() {
	case "p", "price":
		return b.commandPrice()
	case "alert":
		return b.commandAlert(ctx, u.Message.CommandArguments())
	case "alerts":
		return b.commandAlertList()
	case "notify":
		return b.commandNotify(ctx, u.Message.CommandArguments())
	default:
		return translation.Translate("Command help message")
	}
}
