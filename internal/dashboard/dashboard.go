package dashboard

import (
	"btc-dca-dashboard/internal/analysis"
	"btc-dca-dashboard/internal/news"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

type LivePrice struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Formatted     string    `json:"formatted"`
	ChangePercent string    `json:"change_percent"`
	Timestamp     time.Time `json:"timestamp"`
}

// Response is the aggregated dashboard view. Sections whose source has not produced a value
// yet are null.
type Response struct {
	Live                 *LivePrice               `json:"live"`
	Price                *float64                 `json:"price"`
	FormattedPrice       string                   `json:"formatted_price"`
	Snapshot             *types.MarketSnapshot    `json:"snapshot"`
	Timeframes           []analysis.Timeframe     `json:"timeframes"`
	Trend                *analysis.Trend          `json:"trend"`
	Levels               *analysis.Levels         `json:"levels"`
	FearGreed            *types.FearGreed         `json:"fear_greed"`
	Recommendation       *analysis.Recommendation `json:"recommendation"`
	Insights             *analysis.Insights       `json:"insights"`
	Overview             string                   `json:"overview"`
	NotificationsEnabled bool                     `json:"notifications_enabled"`
	Alerts               []types.Threshold        `json:"alerts"`
	UpdatedAt            time.Time                `json:"updated_at"`
	LastUpdated          string                   `json:"last_updated"`
}

func (s *Server) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Build())
}

// Build assembles the dashboard from the latest value of every source.
func (s *Server) Build() Response {
	resp := Response{
		NotificationsEnabled: s.Store.NotificationsEnabled(),
		Alerts:               s.Store.Thresholds(),
	}

	var updated time.Time
	if s.Prices != nil {
		if tick, ok := s.Prices.Latest(); ok {
			change := tick.ChangePercent
			resp.Live = &LivePrice{
				Symbol:        tick.Symbol,
				Price:         tick.Price,
				Formatted:     helpers.FormatUSD(tick.Price),
				ChangePercent: helpers.FormatPercentage(&change),
				Timestamp:     tick.Timestamp,
			}
			price := tick.Price
			resp.Price = &price
			updated = latest(updated, tick.Timestamp)
		}
	}

	var snapshot *types.MarketSnapshot
	if s.Snapshot != nil {
		if snap, at, ok := s.Snapshot.Latest(); ok {
			snapshot = &snap
			resp.Snapshot = snapshot
			resp.Timeframes = analysis.Timeframes(snap)
			trend := analysis.AnalyzeTrend(snap)
			resp.Trend = &trend
			if snap.High24h > 0 && snap.Low24h > 0 {
				levels := analysis.PriceLevels(snap.High24h, snap.Low24h)
				resp.Levels = &levels
			}
			insights := analysis.MarketInsights(snap)
			resp.Insights = &insights
			if resp.Price == nil {
				price := snap.Price
				resp.Price = &price
			}
			updated = latest(updated, at)
		}
	}

	if s.FearGreed != nil {
		if fg, at, ok := s.FearGreed.Latest(); ok {
			resp.FearGreed = &fg
			var change7d *float64
			if snapshot != nil {
				change7d = snapshot.Change7d
			}
			rec := analysis.Recommend(fg.Classification, change7d)
			resp.Recommendation = &rec
			updated = latest(updated, at)
		}
	}

	if s.News != nil {
		if feed, _, ok := s.News.Latest(); ok {
			resp.Overview = news.Overview(feed, s.now())
		}
	}

	if resp.Price != nil {
		resp.FormattedPrice = helpers.FormatUSD(*resp.Price)
	}
	resp.UpdatedAt = updated
	resp.LastUpdated = helpers.FormatUpdated(updated)
	return resp
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
