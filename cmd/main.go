package main

import (
	"btc-dca-dashboard/config"
	"btc-dca-dashboard/internal/alert"
	"btc-dca-dashboard/internal/dashboard"
	"btc-dca-dashboard/internal/database"
	"btc-dca-dashboard/internal/events"
	"btc-dca-dashboard/internal/history"
	"btc-dca-dashboard/internal/metrics"
	"btc-dca-dashboard/internal/news"
	"btc-dca-dashboard/internal/notify"
	"btc-dca-dashboard/internal/poller"
	"btc-dca-dashboard/internal/price"
	"btc-dca-dashboard/internal/sentiment"
	"btc-dca-dashboard/internal/stream"
	"btc-dca-dashboard/internal/telegram"
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/translation"
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	tickBuffer          = 64
	metricsSaveInterval = 5 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure(config.GetString("locales_dir"), config.GetString("lang"))

	db, err := database.InitDB(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics.LoadFromDB(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := alert.NewStore(db)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load price alerts: %v", err)
	}

	hub := events.NewHub()
	ring := history.NewRingBuffer(config.GetInt("history_size"), 0)
	priceStream := stream.New(
		config.GetString("stream_url"),
		config.GetString("stream_symbol"),
		config.GetDuration("stream_reconnect_delay"),
	)

	notifier := notify.NewNotifier(hub, config.GetDuration("toast_duration"))
	if cmd := config.GetString("sound_command"); cmd != "" {
		notifier.WithCuePlayer(notify.NewCommandPlayer(cmd, map[string]string{
			string(types.Up):   config.GetString("sound_up_file"),
			string(types.Down): config.GetString("sound_down_file"),
		}))
	}

	var bot *telegram.Bot
	if token := config.GetString("telegram_bot_token"); token != "" {
		chatID := config.GetInt64("telegram_chat_id")
		bot, err = telegram.NewBot(telegram.BotConfig{
			Token:          token,
			Debug:          config.GetBool("debug"),
			UpdatesTimeout: 60,
			ChatID:         chatID,
		})
		if err != nil {
			log.Errorf("Telegram disabled: %v", err)
		} else {
			bot.WithCommands(store, priceStream)
			if chatID != 0 {
				notifier.WithTelegram(bot, chatID)
			}
		}
	}

	monitor := alert.NewMonitor(store, notifier)

	provider, err := price.NewProvider(
		config.GetString("price_provider"),
		config.GetString("coingecko_url"),
		config.GetString("api_pro_key"),
	)
	if err != nil {
		log.Fatalf("Failed to create price provider: %v", err)
	}
	if hp, ok := provider.(price.HistoryProvider); ok {
		backfillHistory(ctx, hp, ring, config.GetString("stream_symbol"))
	}

	snapshots := poller.New(provider.Name(), config.GetDuration("poll_interval"), provider.Fetch)
	snapshots.OnUpdate(func(s types.MarketSnapshot) {
		monitor.Seed(s.Price)
	})

	fearGreed := poller.New("feargreed", config.GetDuration("poll_interval"),
		sentiment.NewClient(config.GetString("fear_greed_url"), nil).Fetch)
	newsFeed := poller.New("news", config.GetDuration("news_poll_interval"),
		news.NewClient(config.GetString("coingecko_url"), nil).Fetch)

	server := dashboard.NewServer(dashboard.Deps{
		Store:     store,
		Prices:    priceStream,
		History:   ring,
		Hub:       hub,
		Snapshot:  snapshots,
		FearGreed: fearGreed,
		News:      newsFeed,
	})

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	alertTicks := priceStream.Subscribe(tickBuffer)
	displayTicks := priceStream.Subscribe(tickBuffer)

	goRun(func() { priceStream.Run(ctx) })
	goRun(func() { monitor.Run(ctx, alertTicks) })
	goRun(func() { dashboard.ForwardTicks(displayTicks, ring, hub, config.GetDuration("history_interval")) })
	goRun(func() { snapshots.Run(ctx) })
	goRun(func() { fearGreed.Run(ctx) })
	goRun(func() { newsFeed.Run(ctx) })
	if bot != nil {
		goRun(func() { bot.Run(ctx) })
	}
	goRun(func() { saveMetricsPeriodically(ctx, db) })

	if !config.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	apiServer := newAPIServer(ctx, fmt.Sprintf(":%d", config.GetInt("http_port")), dashboard.NewRouter(server))
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GetInt("metrics_port")),
		Handler: metricsAndHealthHandler(),
	}

	for _, srv := range []*http.Server{apiServer, metricsServer} {
		goRun(func() {
			log.Infof("Launching HTTP server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("HTTP server on %s failed: %v", srv.Addr, err)
				stop()
			}
		})
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{apiServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Failed to shut down %s: %v", srv.Addr, err)
		}
	}

	wg.Wait()
	notifier.Wait()
	metrics.SaveToDB(db)
	log.Info("Metrics saved, shutting down...")
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if strings.EqualFold(config.GetString("log_level"), "info") {
		log.SetLevel(log.InfoLevel)
	}
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting BTC DCA dashboard...")
}

func backfillHistory(ctx context.Context, hp price.HistoryProvider, ring *history.RingBuffer, symbol string) {
	ticks, err := hp.History(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		log.Errorf("Failed to backfill price history: %v", err)
		return
	}
	for _, t := range ticks {
		t.Symbol = symbol
		ring.Add(t)
	}
	log.Infof("Backfilled %d historical prices.", len(ticks))
}

func saveMetricsPeriodically(ctx context.Context, db metrics.Storage) {
	ticker := time.NewTicker(metricsSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SaveToDB(db)
		}
	}
}

// newAPIServer ties request contexts to ctx so open event streams end when ctx is cancelled
// instead of holding Shutdown open.
func newAPIServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func metricsAndHealthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthCheckHandler)
	return mux
}
