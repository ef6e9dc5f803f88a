package analysis

import (
	"btc-dca-dashboard/internal/sentiment"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"math"
)

const (
	ConfidenceHigh = "High"
	ConfidenceLow  = "Low"

	stableWeeklyChange = 5.0
	noOverview         = "No market overview available at the moment."
)

type Timeframe struct {
	Label  string `json:"label"`
	Change string `json:"change"`
}

type Trend struct {
	Trend      string `json:"trend"`
	Action     string `json:"action"`
	Confidence string `json:"confidence"`
}

type Levels struct {
	StrongResistance float64 `json:"strong_resistance"`
	Resistance       float64 `json:"resistance"`
	Support          float64 `json:"support"`
	StrongSupport    float64 `json:"strong_support"`
}

type Recommendation struct {
	ShouldDCA bool   `json:"should_dca"`
	Reason    string `json:"reason"`
}

type Insights struct {
	BullsPercentage string `json:"bulls_percentage"`
	BearsPercentage string `json:"bears_percentage"`
	Overview        string `json:"overview"`
}

// Timeframes lists the 1H/24H/7D/30D changes of a snapshot. Missing values render as 0.00.
func Timeframes(s types.MarketSnapshot) []Timeframe {
	return []Timeframe{
		{Label: "1H", Change: helpers.FormatPercentage(s.Change1h)},
		{Label: "24H", Change: helpers.FormatPercentage(s.Change24h)},
		{Label: "7D", Change: helpers.FormatPercentage(s.Change7d)},
		{Label: "30D", Change: helpers.FormatPercentage(s.Change30d)},
	}
}

// AnalyzeTrend agrees on a direction only when the 1h, 24h and 7d changes all point the same
// way. A missing change counts as zero.
func AnalyzeTrend(s types.MarketSnapshot) Trend {
	changes := []float64{value(s.Change1h), value(s.Change24h), value(s.Change7d)}

	up, down := true, true
	for _, c := range changes {
		if c > 0 {
			down = false
		} else {
			up = false
		}
	}

	switch {
	case up:
		return Trend{Trend: "Strong Uptrend", Action: "Consider buying with strict stop-loss", Confidence: ConfidenceHigh}
	case down:
		return Trend{Trend: "Strong Downtrend", Action: "Consider waiting for reversal signals", Confidence: ConfidenceHigh}
	default:
		return Trend{Trend: "Mixed Signals", Action: "Monitor for clearer direction", Confidence: ConfidenceLow}
	}
}

// PriceLevels derives resistance and support from the 24h range.
func PriceLevels(high, low float64) Levels {
	r := high - low
	return Levels{
		StrongResistance: helpers.RoundTo(high+r*0.1, 2),
		Resistance:       helpers.RoundTo(high, 2),
		Support:          helpers.RoundTo(low, 2),
		StrongSupport:    helpers.RoundTo(low-r*0.1, 2),
	}
}

// Recommend decides whether buying the regular amount makes sense given the fear and greed
// classification and the weekly price change.
func Recommend(classification string, change7d *float64) Recommendation {
	weekly := value(change7d)

	switch classification {
	case sentiment.ExtremeFear, sentiment.Fear:
		return Recommendation{true, "Market sentiment is fearful. Accumulating while others sell lowers the average entry price."}
	case sentiment.ExtremeGreed:
		return Recommendation{false, "Market sentiment shows extreme greed. Wait for the market to cool down before buying."}
	}

	switch {
	case math.Abs(weekly) <= stableWeeklyChange:
		return Recommendation{true, "Market sentiment is favorable and price has shown stability over the past week."}
	case weekly > stableWeeklyChange && classification == sentiment.Greed:
		return Recommendation{false, "Price has rallied over the past week while sentiment is greedy. Wait for a pullback."}
	case weekly > stableWeeklyChange:
		return Recommendation{false, "Price is moving up quickly. Wait for it to stabilize before buying."}
	default:
		return Recommendation{true, "Price has dropped over the past week without extreme greed. A good window to accumulate."}
	}
}

// MarketInsights renders the community vote split and the asset description.
func MarketInsights(s types.MarketSnapshot) Insights {
	overview := s.Description
	if overview == "" {
		overview = noOverview
	}
	return Insights{
		BullsPercentage: helpers.FormatPercentage(s.SentimentUpPct),
		BearsPercentage: helpers.FormatPercentage(s.SentimentDownPct),
		Overview:        overview,
	}
}

func value(p *float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	return *p
}
