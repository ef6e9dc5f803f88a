package sentiment

import (
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"context"
	"github.com/pkg/errors"
	"net/http"
	"strconv"
	"time"
)

const (
	ExtremeFear  = "Extreme Fear"
	Fear         = "Fear"
	Neutral      = "Neutral"
	Greed        = "Greed"
	ExtremeGreed = "Extreme Greed"
)

type fearGreedResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// Classify maps an index value onto the provider's five buckets.
func Classify(value int) string {
	switch {
	case value < 25:
		return ExtremeFear
	case value < 45:
		return Fear
	case value <= 55:
		return Neutral
	case value <= 75:
		return Greed
	default:
		return ExtremeGreed
	}
}

// Client reads the Fear & Greed index.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: url, client: client}
}

func (c *Client) Fetch(ctx context.Context) (types.FearGreed, error) {
	var resp fearGreedResponse
	if err := helpers.GetJSON(ctx, c.client, c.url, &resp); err != nil {
		return types.FearGreed{}, errors.Wrap(err, "fear and greed index")
	}
	if resp.Metadata.Error != nil && *resp.Metadata.Error != "" {
		return types.FearGreed{}, errors.Errorf("fear and greed index: %s", *resp.Metadata.Error)
	}
	if len(resp.Data) == 0 {
		return types.FearGreed{}, errors.New("fear and greed index: empty response")
	}

	entry := resp.Data[0]
	value, err := strconv.Atoi(entry.Value)
	if err != nil || value < 0 || value > 100 {
		return types.FearGreed{}, errors.Errorf("fear and greed index: invalid value %q", entry.Value)
	}

	classification := entry.ValueClassification
	if classification == "" {
		classification = Classify(value)
	}

	fg := types.FearGreed{
		Value:          value,
		Classification: classification,
		Timestamp:      time.Now().UTC(),
	}
	if ts, err := strconv.ParseInt(entry.Timestamp, 10, 64); err == nil {
		fg.Timestamp = time.Unix(ts, 0).UTC()
	}
	return fg, nil
}
