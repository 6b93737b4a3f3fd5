package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Mboum      MboumConfig
	FMP        FMPConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	LLM        LLMConfig
	Fetch      FetchConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ReadTimeout     int
	WriteTimeout    int
	BodyLimit       int
	RateLimitPerMin int
	MaxQueryLength  int
}

type MboumConfig struct {
	BaseURL    string
	APIKey     string
	TimeoutSec int
}

type FMPConfig struct {
	BaseURL    string
	APIKey     string
	TimeoutSec int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

// FetchConfig controls the dispatcher's provider fan-out.
type FetchConfig struct {
	CallTimeoutSec    int
	HistoricalDays    int
	FundamentalsLimit int
	MarketBasket      []string
}

// ValidationConfig holds the numeric-match tolerances and confidence
// thresholds. The values are shipped heuristics, kept configurable rather
// than derived.
type ValidationConfig struct {
	PriceTolerance    float64
	PercentTolerance  float64
	AllMatch          float64
	MostMatch         float64
	PartialMatch      float64
	WeakMatch         float64
	NothingToCheck    float64
	Insufficient      float64
	ErrorPhrase       float64
	GeneralConfidence float64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/richtv")

	viper.SetEnvPrefix("RICHTV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)
	viper.SetDefault("server.rateLimitPerMin", 60)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.maxQueryLength", 2000)

	viper.SetDefault("mboum.baseURL", "https://api.mboum.com")
	viper.SetDefault("mboum.timeoutSec", 10)

	viper.SetDefault("fmp.baseURL", "https://financialmodelingprep.com/api/v3")
	viper.SetDefault("fmp.timeoutSec", 10)

	viper.SetDefault("sqlite.path", "./data/richtv.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 60)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("fetch.callTimeoutSec", 10)
	viper.SetDefault("fetch.historicalDays", 30)
	viper.SetDefault("fetch.fundamentalsLimit", 1)
	viper.SetDefault("fetch.marketBasket", []string{"^GSPC", "^DJI", "^IXIC"})

	viper.SetDefault("validation.priceTolerance", 0.01)
	viper.SetDefault("validation.percentTolerance", 0.1)
	viper.SetDefault("validation.allMatch", 0.95)
	viper.SetDefault("validation.mostMatch", 0.85)
	viper.SetDefault("validation.partialMatch", 0.7)
	viper.SetDefault("validation.weakMatch", 0.55)
	viper.SetDefault("validation.nothingToCheck", 0.6)
	viper.SetDefault("validation.insufficient", 0.3)
	viper.SetDefault("validation.errorPhrase", 0.1)
	viper.SetDefault("validation.generalConfidence", 0.80)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
