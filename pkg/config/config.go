package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment    string               `yaml:"environment" default:"development" validate:"required"`
	Server         ServerConfig         `yaml:"server"`
	Logger         LoggerConfig         `yaml:"logger"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Forecast       ForecastConfig       `yaml:"forecast"`
	Model          ModelConfig          `yaml:"model"`
	LLM            LLMConfig            `yaml:"llm"`
	Mongo          MongoConfig          `yaml:"mongo"`
	Redis          RedisConfig          `yaml:"redis"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	ClickHouse     ClickHouseConfig     `yaml:"clickhouse"`
	PriceFeed      PriceFeedConfig      `yaml:"price_feed"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Polygon        PolygonConfig        `yaml:"polygon"`
	Correlation    CorrelationConfig    `yaml:"correlation"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
}

type ServerConfig struct {
	Host            string          `yaml:"host" default:"0.0.0.0"`
	Port            int             `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" default:"90s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" default:"10s"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" default:"60s"`
	CORS            bool            `yaml:"cors" default:"true"`
	CORSOrigins     []string        `yaml:"cors_origins"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     float64 `yaml:"capacity" default:"10"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type ForecastConfig struct {
	UniverseFile string        `yaml:"universe_file" default:"configs/universe.yaml" validate:"required"`
	LookbackDays int           `yaml:"lookback_days" default:"120" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" default:"30s"`
	CacheTTL     time.Duration `yaml:"cache_ttl" default:"30m"`
}

type ModelConfig struct {
	URL     string        `yaml:"url" default:"http://localhost:8501" validate:"required,url"`
	Name    string        `yaml:"name" default:"stock_lstm" validate:"required"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
	Retries int           `yaml:"retries" default:"2" validate:"gte=0"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider" default:"gemini" validate:"oneof=gemini openai"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model" default:"gemini-2.0-flash"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout" default:"30s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" default:"60" validate:"gt=0"`
	Temperature       float32       `yaml:"temperature" default:"0.2"`
}

type MongoConfig struct {
	URI                   string        `yaml:"uri" default:"mongodb://localhost:27017" validate:"required"`
	Database              string        `yaml:"database" default:"stock_db" validate:"required"`
	SentimentCollection   string        `yaml:"sentiment_collection" default:"sentiment" validate:"required"`
	CorrelationCollection string        `yaml:"correlation_collection" default:"correlations" validate:"required"`
	SentimentTickerField  string        `yaml:"sentiment_ticker_field" default:"tikker" validate:"required"`
	Timeout               time.Duration `yaml:"timeout" default:"5s"`
}

type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host" default:"localhost"`
	Port       int    `yaml:"port" default:"6379"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	Prefix     string `yaml:"prefix" default:"stocksense"`
	MemorySize int    `yaml:"memory_size" default:"256"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"stocksense.recommendations"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"snappy"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"100ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	Async        bool          `yaml:"async"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"stocksense"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type PriceFeedConfig struct {
	Source      string  `yaml:"source" default:"yahoo" validate:"oneof=yahoo clickhouse"`
	Concurrency int     `yaml:"concurrency" default:"8" validate:"gt=0"`
	RatePerSec  float64 `yaml:"rate_per_sec" default:"5"`
}

type RecommendationConfig struct {
	MaxTickers     int `yaml:"max_tickers" default:"5" validate:"gt=0"`
	SentimentLimit int `yaml:"sentiment_limit" default:"20" validate:"gte=0"`
	Concurrency    int `yaml:"concurrency" default:"5" validate:"gt=0"`
}

type PolygonConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url" default:"https://api.polygon.io"`
	Timeout           time.Duration `yaml:"timeout" default:"15s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" default:"5" validate:"gt=0"`
	Days              int           `yaml:"days" default:"30" validate:"gt=0"`
	PageLimit         int           `yaml:"page_limit" default:"100" validate:"gt=0,lte=1000"`
}

type CorrelationConfig struct {
	Threshold       float64 `yaml:"threshold" default:"0.4" validate:"gte=-1,lte=1"`
	LookbackDays    int     `yaml:"lookback_days" default:"365" validate:"gt=0"`
	MinObservations int     `yaml:"min_observations" default:"30" validate:"gt=1"`
}

type SchedulerConfig struct {
	Timezone        string `yaml:"timezone" default:"America/New_York"`
	CorrelationCron string `yaml:"correlation_cron" default:"0 3 * * 0"`
	SentimentCron   string `yaml:"sentiment_cron" default:"0 2 * * *"`
	PriceSyncCron   string `yaml:"price_sync_cron" default:"30 17 * * 1-5"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults first so explicit false/zero values in the file survive.
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.Database, "DB_NAME")
	setString(&c.Mongo.SentimentCollection, "COLLECTION_SENTIMENT")
	setString(&c.Mongo.CorrelationCollection, "COLLECTION_CORELEATION")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.Polygon.APIKey, "POLYGON_API_KEY")
	setString(&c.Model.URL, "MODEL_URL")
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.ClickHouse.Host, "CLICKHOUSE_HOST")

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.PriceFeed.Source == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("price_feed.source 'clickhouse' requires clickhouse.enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Correlation.MinObservations < 2 {
		return fmt.Errorf("correlation.min_observations must be at least 2")
	}
	return nil
}
