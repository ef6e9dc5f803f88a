package stream

import (
	"btc-dca-dashboard/internal/types"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"time"
)

// tickerMessage covers both the 24h ticker stream (c = last price, P = change percent) and the
// trade stream (p = trade price). On the ticker stream p is the absolute change and is ignored.
// E and C are declared so encoding/json does not fold them onto e and c.
type tickerMessage struct {
	EventType     string          `json:"e"`
	EventTime     int64           `json:"E"`
	CloseTime     int64           `json:"C"`
	Symbol        string          `json:"s"`
	LastPrice     decimal.Decimal `json:"c"`
	TradePrice    decimal.Decimal `json:"p"`
	ChangePercent decimal.Decimal `json:"P"`
}

var errNoPrice = errors.New("message carries no price")

func parseTick(data []byte, fallbackSymbol string, now time.Time) (types.PriceTick, error) {
	var msg tickerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return types.PriceTick{}, errors.Wrap(err, "could not decode stream message")
	}

	price := msg.LastPrice
	if msg.EventType == "trade" || price.IsZero() {
		price = msg.TradePrice
	}
	if !price.IsPositive() {
		return types.PriceTick{}, errNoPrice
	}

	symbol := msg.Symbol
	if symbol == "" {
		symbol = fallbackSymbol
	}

	var change float64
	if msg.EventType != "trade" {
		change = msg.ChangePercent.InexactFloat64()
	}

	return types.PriceTick{
		Symbol:        symbol,
		Price:         price.InexactFloat64(),
		ChangePercent: change,
		Timestamp:     now,
	}, nil
}
