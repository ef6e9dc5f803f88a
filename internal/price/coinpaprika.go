package price

import (
	"btc-dca-dashboard/internal/types"
	"context"
	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const bitcoinID = "btc-bitcoin"

// CoinPaprika reads the BTC ticker through the coinpaprika client. It has no 24h high/low or
// sentiment votes; those stay empty.
type CoinPaprika struct {
	client *coinpaprika.Client

	mu          sync.Mutex
	description string
}

func NewCoinPaprika(apiProKey string) *CoinPaprika {
	if apiProKey != "" {
		return &CoinPaprika{client: coinpaprika.NewClient(nil, coinpaprika.WithAPIKey(apiProKey))}
	}
	return &CoinPaprika{client: coinpaprika.NewClient(nil)}
}

func (c *CoinPaprika) Name() string { return "coinpaprika" }

func (c *CoinPaprika) Fetch(ctx context.Context) (types.MarketSnapshot, error) {
	ticker, err := c.client.Tickers.GetByID(bitcoinID, &coinpaprika.TickersOptions{Quotes: "USD"})
	if err != nil {
		return types.MarketSnapshot{}, errors.Wrap(err, "coinpaprika snapshot")
	}
	if ctx.Err() != nil {
		return types.MarketSnapshot{}, ctx.Err()
	}

	usd, ok := ticker.Quotes["USD"]
	if !ok || usd.Price == nil {
		return types.MarketSnapshot{}, errors.New("coinpaprika snapshot: missing USD quote")
	}

	return types.MarketSnapshot{
		Source:      c.Name(),
		Price:       *usd.Price,
		Change1h:    usd.PercentChange1h,
		Change24h:   usd.PercentChange24h,
		Change7d:    usd.PercentChange7d,
		Change30d:   usd.PercentChange30d,
		Description: c.loadDescription(),
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// loadDescription fetches the coin description until one is loaded; it does not change between polls.
func (c *CoinPaprika) loadDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.description != "" {
		return c.description
	}
	coin, err := c.client.Coins.GetByID(bitcoinID)
	if err != nil {
		log.Debugf("Could not load coin description: %v", err)
		return ""
	}
	if coin.Description != nil {
		c.description = *coin.Description
	}
	return c.description
}
