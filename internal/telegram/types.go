package telegram

import (
	"btc-dca-dashboard/internal/types"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	// ChatID is the only chat the bot talks to. Zero accepts commands from any chat.
	ChatID int64
	// APIEndpoint overrides tgbotapi.APIEndpoint.
	APIEndpoint string
}

// PriceSource provides the latest streamed price.
type PriceSource interface {
	Latest() (types.PriceTick, bool)
}

// Bot telegram interaction client
type Bot struct {
	Bot    *tgbotapi.BotAPI
	Config BotConfig

	alerts AlertStore
	prices PriceSource
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}
