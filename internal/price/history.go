package price

import (
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"context"
	"fmt"
	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"math"
	"time"
)

const (
	historyInterval = "5m"
	historyLimit    = 288
)

// HistoryProvider backfills recent prices so the chart is not empty before the stream warms up.
type HistoryProvider interface {
	History(ctx context.Context, since time.Time) ([]types.PriceTick, error)
}

// History returns five-minute prices since the given time, oldest first.
func (c *CoinPaprika) History(ctx context.Context, since time.Time) ([]types.PriceTick, error) {
	tickers, err := c.client.Tickers.GetHistoricalTickersByID(bitcoinID, &coinpaprika.TickersHistoricalOptions{
		Quote:    "USD",
		Limit:    historyLimit,
		Interval: historyInterval,
		Start:    since,
	})
	if err != nil {
		return nil, errors.Wrap(err, "coinpaprika history")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	ticks := make([]types.PriceTick, 0, len(tickers))
	for _, t := range tickers {
		if t.Timestamp == nil || t.Price == nil {
			continue
		}
		ticks = append(ticks, types.PriceTick{Price: *t.Price, Timestamp: *t.Timestamp})
	}
	return ticks, nil
}

type marketChart struct {
	Prices [][]decimal.Decimal `json:"prices"`
}

// History reads the market chart, which CoinGecko samples every five minutes for the last day.
func (c *CoinGecko) History(ctx context.Context, since time.Time) ([]types.PriceTick, error) {
	days := int(math.Round(time.Since(since).Hours() / 24))
	if days < 1 {
		days = 1
	}

	var chart marketChart
	url := fmt.Sprintf("%s/coins/bitcoin/market_chart?vs_currency=usd&days=%d", c.baseURL, days)
	if err := helpers.GetJSON(ctx, c.client, url, &chart); err != nil {
		return nil, errors.Wrap(err, "coingecko history")
	}

	ticks := make([]types.PriceTick, 0, len(chart.Prices))
	for _, point := range chart.Prices {
		if len(point) != 2 || !point[1].IsPositive() {
			continue
		}
		at := time.UnixMilli(point[0].IntPart()).UTC()
		if at.Before(since) {
			continue
		}
		ticks = append(ticks, types.PriceTick{Price: point[1].InexactFloat64(), Timestamp: at})
	}
	return ticks, nil
}
