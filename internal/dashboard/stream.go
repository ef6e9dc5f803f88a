package dashboard

import (
	"btc-dca-dashboard/internal/chart"
	"btc-dca-dashboard/internal/events"
	"btc-dca-dashboard/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"time"
)

const eventBuffer = 32

// sinceParam reads ?since=<duration>, e.g. 1h. Without it the whole history is returned.
func (s *Server) sinceParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return time.Time{}, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		respondError(c, http.StatusBadRequest, "since must be a positive duration such as 1h")
		return time.Time{}, false
	}
	return s.now().Add(-d), true
}

func (s *Server) GetHistory(c *gin.Context) {
	since, ok := s.sinceParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticks": s.History.Since(since)})
}

func (s *Server) GetChart(c *gin.Context) {
	since, ok := s.sinceParam(c)
	if !ok {
		return
	}

	key := c.Query("since")
	if data, ok := s.charts.Get(key); ok {
		c.Data(http.StatusOK, "image/png", data)
		return
	}

	ticks := s.History.Since(since)
	title := "BTC"
	if len(ticks) > 0 {
		title = ticks[0].Symbol
	}

	data, err := chart.RenderPNG(ticks, chart.Options{Title: title})
	if errors.Is(err, chart.ErrNotEnoughData) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	} else if err != nil {
		log.Errorf("❌ Failed to render chart: %v", err)
		respondError(c, http.StatusInternalServerError, "could not render chart")
		return
	}
	s.charts.Set(key, data)
	c.Data(http.StatusOK, "image/png", data)
}

// StreamEvents sends tick and toast events as Server-Sent Events until the client leaves.
func (s *Server) StreamEvents(c *gin.Context) {
	client := events.NewClientWithBuffer(eventBuffer)
	s.Hub.Register(client)
	defer s.Hub.Unregister(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	if s.Prices != nil {
		if tick, ok := s.Prices.Latest(); ok {
			c.SSEvent(events.TypeTick, tick)
			c.Writer.Flush()
		}
	}

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-client.Chan:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event.Data)
			return true
		}
	})
}

// ForwardTicks pushes every tick to connected browsers and records at most one tick per
// interval in the history.
func ForwardTicks(ticks <-chan types.PriceTick, ring RingWriter, hub *events.Hub, interval time.Duration) {
	var last time.Time
	for tick := range ticks {
		if last.IsZero() || tick.Timestamp.Sub(last) >= interval {
			ring.Add(tick)
			last = tick.Timestamp
		}
		hub.Publish(events.Event{Type: events.TypeTick, Data: tick})
	}
}

type RingWriter interface {
	Add(tick types.PriceTick)
}
