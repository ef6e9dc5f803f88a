package dashboard

import (
	"btc-dca-dashboard/internal/alert"
	"btc-dca-dashboard/internal/chart"
	"btc-dca-dashboard/internal/events"
	"btc-dca-dashboard/internal/history"
	"btc-dca-dashboard/internal/news"
	"btc-dca-dashboard/internal/types"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"time"
)

// Source is a periodically refreshed value, see poller.Poller.
type Source[T any] interface {
	Latest() (T, time.Time, bool)
}

// PriceSource is the live price stream.
type PriceSource interface {
	Latest() (types.PriceTick, bool)
}

// Deps are the components the HTTP API reads from and mutates.
type Deps struct {
	Store     *alert.Store
	Prices    PriceSource
	History   *history.RingBuffer
	Hub       *events.Hub
	Snapshot  Source[types.MarketSnapshot]
	FearGreed Source[types.FearGreed]
	News      Source[news.Feed]
}

const chartCacheTTL = 15 * time.Second

type Server struct {
	Deps
	charts *chart.Cache
	now    func() time.Time
}

func NewServer(deps Deps) *Server {
	return &Server{Deps: deps, charts: chart.NewCache(chartCacheTTL), now: time.Now}
}

// NewRouter returns a gin engine with recovery, request logging and the API routes.
func NewRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	s.RegisterRoutes(router)
	return router
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/dashboard", s.GetDashboard)

		api.GET("/alerts", s.ListAlerts)
		api.POST("/alerts", s.CreateAlert)
		api.PUT("/alerts/:id", s.UpdateAlert)
		api.DELETE("/alerts/:id", s.DeleteAlert)
		api.PUT("/alerts/index/:index", s.UpdateAlertAt)
		api.DELETE("/alerts/index/:index", s.DeleteAlertAt)

		api.GET("/notifications", s.GetNotifications)
		api.PUT("/notifications", s.SetNotifications)

		api.GET("/history", s.GetHistory)
		api.GET("/chart.png", s.GetChart)
		api.GET("/events", s.StreamEvents)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
