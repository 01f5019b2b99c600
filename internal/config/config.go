package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN      string
		Host     string
		Port     int
		Name     string
		User     string
		Password string
		SSLMode  string
	}
	Telegram struct {
		BotToken      string
		ChatID        string
		ServerURL     string
		RatePerSecond int
	}
	Thresholds struct {
		TempWarning string
		HumWarning  string
	}
	Datasets struct {
		Production string
		Test       string
	}
	API struct {
		Port string
	}
	Notification struct {
		QueueSize   int
		MaxWorkers  int
		SendTimeout time.Duration
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	MQTT struct {
		Broker   string
		Topic    string
		ClientID string
	}
	Log struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Database settings
	cfg.DB.DSN = os.Getenv("DB_DSN")
	cfg.DB.Host = os.Getenv("DB_HOST")
	if p, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil {
		cfg.DB.Port = p
	}
	cfg.DB.Name = os.Getenv("DB_NAME")
	cfg.DB.User = os.Getenv("DB_USER")
	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	cfg.DB.SSLMode = os.Getenv("DB_SSLMODE")

	// Telegram settings
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.Telegram.ServerURL = os.Getenv("TELEGRAM_API_URL")
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.Telegram.RatePerSecond = r
	}

	// Warning thresholds stay raw; they are parsed per evaluation
	cfg.Thresholds.TempWarning = os.Getenv("TEMP_WARNING")
	cfg.Thresholds.HumWarning = os.Getenv("HUM_WARNING")

	cfg.Datasets.Production = os.Getenv("DATASET_TABLE")
	cfg.Datasets.Test = os.Getenv("DATASET_TEST_TABLE")

	cfg.API.Port = os.Getenv("API_PORT")

	// Notification worker settings
	if qs, err := strconv.Atoi(os.Getenv("QUEUE_SIZE")); err == nil {
		cfg.Notification.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil {
		cfg.Notification.MaxWorkers = mw
	}
	if d, err := time.ParseDuration(os.Getenv("NOTIFY_TIMEOUT")); err == nil {
		cfg.Notification.SendTimeout = d
	}

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	cfg.MQTT.Broker = os.Getenv("MQTT_BROKER")
	cfg.MQTT.Topic = os.Getenv("MQTT_TOPIC")
	cfg.MQTT.ClientID = os.Getenv("MQTT_CLIENT_ID")

	cfg.Log.Dir = os.Getenv("LOG_DIR")
	cfg.Log.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		if cfg.DB.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if cfg.DB.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.Telegram.ServerURL == "" {
		c.Telegram.ServerURL = "https://api.telegram.org"
	}
	if c.Telegram.RatePerSecond <= 0 {
		c.Telegram.RatePerSecond = 20
	}
	if c.Datasets.Production == "" {
		c.Datasets.Production = "sensor_data"
	}
	if c.Datasets.Test == "" {
		c.Datasets.Test = "sensor_data_test"
	}
	if c.API.Port == "" {
		c.API.Port = ":5000"
	}
	if c.Notification.QueueSize <= 0 {
		c.Notification.QueueSize = 500
	}
	if c.Notification.MaxWorkers <= 0 {
		c.Notification.MaxWorkers = 10
	}
	if c.Notification.SendTimeout <= 0 {
		c.Notification.SendTimeout = 10 * time.Second
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "alert_notification"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "sensors/+/readings"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "telemetry-service"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ConnString returns DB_DSN when set, otherwise a postgres URL built from the parts.
func (c Config) ConnString() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	if c.DB.User != "" {
		u.User = url.UserPassword(c.DB.User, c.DB.Password)
	}
	return u.String()
}

// TelegramEnabled reports whether both bot token and chat id are configured.
func (c Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
