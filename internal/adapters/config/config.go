package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"mintrader/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	S3            S3Config
	Broker        BrokerConfig
	AI            AIConfig
	Trading       TradingConfig
	Schedule      ScheduleConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"mintrader"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig is optional; with no brokers configured the event publisher
// becomes a no-op.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type S3Config struct {
	Bucket string `envconfig:"S3_BUCKET_NAME" required:"true"`
	Region string `envconfig:"S3_REGION" default:"us-east-1"`
}

type BrokerConfig struct {
	BaseURL      string        `envconfig:"ALPACA_BASE_URL" default:"https://paper-api.alpaca.markets"`
	APIKey       string        `envconfig:"ALPACA_API_KEY" required:"true"`
	APISecret    string        `envconfig:"ALPACA_API_SECRET" required:"true"`
	Timeout      time.Duration `envconfig:"ALPACA_TIMEOUT" default:"15s"`
	ReqPerMinute int           `envconfig:"ALPACA_REQ_PER_MINUTE" default:"200"`
}

type AIConfig struct {
	OpenAIKey     string        `envconfig:"OPENAI_API_KEY" required:"true"`
	AnalysisModel string        `envconfig:"AI_ANALYSIS_MODEL" default:"gpt-4o"`
	QuickModel    string        `envconfig:"AI_QUICK_MODEL" default:"gpt-4o-mini"`
	Timeout       time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
}

// TradingConfig holds the per-iteration trading constraints and analysis
// limits. Loaded once at startup; treated as immutable afterwards.
type TradingConfig struct {
	MaxPositionSizePct      float64 `envconfig:"TRADING_MAX_POSITION_SIZE_PCT" default:"10"`
	MaxSectorConcentration  float64 `envconfig:"TRADING_MAX_SECTOR_CONCENTRATION_PCT" default:"30"`
	MaxTradesPerDay         int     `envconfig:"TRADING_MAX_TRADES_PER_DAY" default:"10"`
	MinCashReservePct       float64 `envconfig:"TRADING_MIN_CASH_RESERVE_PCT" default:"5"`
	StopLossPct             float64 `envconfig:"TRADING_STOP_LOSS_PCT" default:"15"`
	MinHoldingDays          int     `envconfig:"TRADING_MIN_HOLDING_DAYS" default:"7"`
	MinConvictionScore      int     `envconfig:"TRADING_MIN_CONVICTION_SCORE" default:"7"`
	MaxAnalysesPerIteration int     `envconfig:"TRADING_MAX_ANALYSES" default:"3"`
	HardExclusionDays       int     `envconfig:"TRADING_HARD_EXCLUSION_DAYS" default:"3"`
	SoftExclusionDays       int     `envconfig:"TRADING_SOFT_EXCLUSION_DAYS" default:"14"`
}

type ScheduleConfig struct {
	// Cron specs in the exchange timezone, one iteration per firing.
	// Defaults: shortly after open, midday, and 30 minutes before close.
	CronSpecs []string `envconfig:"SCHEDULE_CRON_SPECS" default:"35 9 * * MON-FRI,30 12 * * MON-FRI,30 15 * * MON-FRI"`
	Timezone  string   `envconfig:"SCHEDULE_TIMEZONE" default:"America/New_York"`
	RunOnce   bool     `envconfig:"SCHEDULE_RUN_ONCE" default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
