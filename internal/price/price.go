package price

import (
	"btc-dca-dashboard/internal/types"
	"context"
	"github.com/pkg/errors"
	"strings"
)

// Provider fetches a REST snapshot of the market for one asset.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (types.MarketSnapshot, error)
}

// NewProvider selects a provider by name ("coinpaprika" or "coingecko").
func NewProvider(name, coingeckoURL, apiProKey string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "coinpaprika":
		return NewCoinPaprika(apiProKey), nil
	case "coingecko":
		return NewCoinGecko(coingeckoURL, nil), nil
	}
	return nil, errors.Errorf("unknown price provider %q", name)
}
