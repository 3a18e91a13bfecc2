package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Currency CurrencyConfig
	Reports  ReportsConfig
	Stock    StockConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (single-file store, the default) or
	// "postgres". An empty DSN selects the in-memory store.
	Driver string
	DSN    string
	Seed   bool
}

type RedisConfig struct {
	// Addr empty disables the cache.
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	// Empty broker list disables event publishing and the worker.
	Brokers       []string
	TopicEvents   string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// CurrencyConfig drives display formatting only; core arithmetic is
// independent of it.
type CurrencyConfig struct {
	Symbol        string
	Code          string
	DecimalPlaces int
	ThousandsSep  string
	DecimalSep    string
}

type ReportsConfig struct {
	ExportPath string
	DateFormat string
	// UTF8BOM prepends a byte order mark to CSV exports so spreadsheet
	// tools pick up the encoding.
	UTF8BOM bool
}

type StockConfig struct {
	AlertLevel int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	decimalPlaces, _ := strconv.Atoi(getEnv("CURRENCY_DECIMAL_PLACES", "2"))
	alertLevel, _ := strconv.Atoi(getEnv("STOCK_ALERT_LEVEL", "10"))

	var brokers []string
	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		brokers = strings.Split(v, ",")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite3"),
			DSN:    getEnv("DATABASE_URL", ""),
			Seed:   getEnv("DATABASE_SEED", "false") == "true",
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       brokers,
			TopicEvents:   getEnv("KAFKA_TOPIC_EVENTS", "pos-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "pos-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Currency: CurrencyConfig{
			Symbol:        getEnv("CURRENCY_SYMBOL", "S/"),
			Code:          getEnv("CURRENCY_CODE", "PEN"),
			DecimalPlaces: decimalPlaces,
			ThousandsSep:  getEnv("CURRENCY_THOUSANDS_SEPARATOR", ","),
			DecimalSep:    getEnv("CURRENCY_DECIMAL_SEPARATOR", "."),
		},
		Reports: ReportsConfig{
			ExportPath: getEnv("REPORTS_EXPORT_PATH", "exports"),
			DateFormat: getEnv("REPORTS_DATE_FORMAT", "02/01/2006"),
			UTF8BOM:    getEnv("REPORTS_UTF8_BOM", "true") == "true",
		},
		Stock: StockConfig{
			AlertLevel: alertLevel,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, driver=%s", cfg.Server.Env, cfg.Server.Port, cfg.Database.Driver)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
