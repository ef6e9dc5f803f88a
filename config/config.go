package config

import (
	"github.com/spf13/viper"
	"sync"
	"time"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("http_port", "HTTP_PORT")
		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("log_level", "LOG_LEVEL")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("locales_dir", "LOCALES_DIR")
		viper.BindEnv("db_path", "DB_PATH")

		viper.BindEnv("stream_url", "STREAM_URL")
		viper.BindEnv("stream_symbol", "STREAM_SYMBOL")
		viper.BindEnv("stream_reconnect_delay", "STREAM_RECONNECT_DELAY")
		viper.BindEnv("history_size", "HISTORY_SIZE")
		viper.BindEnv("history_interval", "HISTORY_INTERVAL")

		viper.BindEnv("price_provider", "PRICE_PROVIDER")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("coingecko_url", "COINGECKO_URL")
		viper.BindEnv("fear_greed_url", "FEAR_GREED_URL")
		viper.BindEnv("poll_interval", "POLL_INTERVAL")
		viper.BindEnv("news_poll_interval", "NEWS_POLL_INTERVAL")

		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("telegram_chat_id", "TELEGRAM_CHAT_ID")
		viper.BindEnv("sound_command", "SOUND_COMMAND")
		viper.BindEnv("sound_up_file", "SOUND_UP_FILE")
		viper.BindEnv("sound_down_file", "SOUND_DOWN_FILE")
		viper.BindEnv("toast_duration", "TOAST_DURATION")

		viper.SetDefault("http_port", 8080)
		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("log_level", "error")
		viper.SetDefault("lang", "en")
		viper.SetDefault("locales_dir", "locales")
		viper.SetDefault("db_path", "/app/data/dashboard.db")

		viper.SetDefault("stream_url", "wss://stream.binance.com:9443/ws/btcusdt@ticker")
		viper.SetDefault("stream_symbol", "BTCUSDT")
		viper.SetDefault("stream_reconnect_delay", 5*time.Second)
		viper.SetDefault("history_size", 1440)
		viper.SetDefault("history_interval", time.Minute)

		viper.SetDefault("price_provider", "coinpaprika")
		viper.SetDefault("coingecko_url", "https://api.coingecko.com/api/v3")
		viper.SetDefault("fear_greed_url", "https://api.alternative.me/fng/?limit=1")
		viper.SetDefault("poll_interval", time.Minute)
		viper.SetDefault("news_poll_interval", 5*time.Minute)

		viper.SetDefault("sound_up_file", "sounds/alert-up.mp3")
		viper.SetDefault("sound_down_file", "sounds/alert-down.mp3")
		viper.SetDefault("toast_duration", 5*time.Second)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

// GetDuration accepts Go duration strings ("30s", "5m") from the environment.
func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
