package types

import "time"

// PriceTick is a single normalized price observation from the stream.
type PriceTick struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Timestamp     time.Time `json:"timestamp"`
}

// Threshold is a user-defined trigger price.
type Threshold struct {
	ID        string    `json:"id"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// CrossingEvent is derived from two consecutive ticks and never stored.
type CrossingEvent struct {
	Threshold Threshold `json:"threshold"`
	Direction Direction `json:"direction"`
	Previous  float64   `json:"previous"`
	Current   float64   `json:"current"`
}

// MarketSnapshot is the REST-polled view of the market.
type MarketSnapshot struct {
	Source           string    `json:"source"`
	Price            float64   `json:"price"`
	Change1h         *float64  `json:"change_1h"`
	Change24h        *float64  `json:"change_24h"`
	Change7d         *float64  `json:"change_7d"`
	Change30d        *float64  `json:"change_30d"`
	High24h          float64   `json:"high_24h"`
	Low24h           float64   `json:"low_24h"`
	SentimentUpPct   *float64  `json:"sentiment_votes_up_percentage"`
	SentimentDownPct *float64  `json:"sentiment_votes_down_percentage"`
	Description      string    `json:"description"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FearGreed is the composite sentiment score (0-100).
type FearGreed struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

type EventItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
}
