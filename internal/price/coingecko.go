package price

import (
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"context"
	"github.com/pkg/errors"
	"net/http"
	"strings"
	"time"
)

const coinGeckoCoinQuery = "/coins/bitcoin?localization=false&tickers=false&community_data=false&developer_data=false&sparkline=false"

type usdValue struct {
	USD *float64 `json:"usd"`
}

type coinGeckoCoin struct {
	MarketData struct {
		CurrentPrice usdValue `json:"current_price"`
		High24h      usdValue `json:"high_24h"`
		Low24h       usdValue `json:"low_24h"`
		Change1h     usdValue `json:"price_change_percentage_1h_in_currency"`
		Change24h    usdValue `json:"price_change_percentage_24h_in_currency"`
		Change7d     usdValue `json:"price_change_percentage_7d_in_currency"`
		Change30d    usdValue `json:"price_change_percentage_30d_in_currency"`
	} `json:"market_data"`
	SentimentVotesUp   *float64 `json:"sentiment_votes_up_percentage"`
	SentimentVotesDown *float64 `json:"sentiment_votes_down_percentage"`
	Description        struct {
		EN string `json:"en"`
	} `json:"description"`
}

type CoinGecko struct {
	baseURL string
	client  *http.Client
}

func NewCoinGecko(baseURL string, client *http.Client) *CoinGecko {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) Fetch(ctx context.Context) (types.MarketSnapshot, error) {
	var coin coinGeckoCoin
	if err := helpers.GetJSON(ctx, c.client, c.baseURL+coinGeckoCoinQuery, &coin); err != nil {
		return types.MarketSnapshot{}, errors.Wrap(err, "coingecko snapshot")
	}

	md := coin.MarketData
	if md.CurrentPrice.USD == nil {
		return types.MarketSnapshot{}, errors.New("coingecko snapshot: missing current price")
	}

	return types.MarketSnapshot{
		Source:           c.Name(),
		Price:            *md.CurrentPrice.USD,
		Change1h:         md.Change1h.USD,
		Change24h:        md.Change24h.USD,
		Change7d:         md.Change7d.USD,
		Change30d:        md.Change30d.USD,
		High24h:          valueOrZero(md.High24h.USD),
		Low24h:           valueOrZero(md.Low24h.USD),
		SentimentUpPct:   coin.SentimentVotesUp,
		SentimentDownPct: coin.SentimentVotesDown,
		Description:      coin.Description.EN,
		UpdatedAt:        time.Now().UTC(),
	}, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
