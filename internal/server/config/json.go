package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/krypton/internal/flagx"
	"github.com/dmitrijs2005/krypton/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// accept "5s" style strings as well as integer nanoseconds.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	GRPCAddr              string         `json:"grpc_addr"`
	LogLevel              string         `json:"log_level"`
	CORSOrigin            string         `json:"cors_origin"`
	Storage               string         `json:"storage"`
	DatabaseDSN           string         `json:"database_dsn"`
	MongoURI              string         `json:"mongo_uri"`
	MongoDatabase         string         `json:"mongo_database"`
	SecretKey             string         `json:"secret_key"`
	StrictSecret          *bool          `json:"strict_secret"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ReferenceCurrency     string         `json:"reference_currency"`
	PriceAPIBaseURL       string         `json:"price_api_base_url"`
	PriceAPIKey           string         `json:"price_api_key"`
	PriceTimeout          timex.Duration `json:"price_timeout"`
	PriceCacheTTL         timex.Duration `json:"price_cache_ttl"`
	RedisAddr             string         `json:"redis_addr"`
	RedisPassword         string         `json:"redis_password"`
	RedisDB               int            `json:"redis_db"`
	KafkaBrokers          []string       `json:"kafka_brokers"`
	KafkaTopic            string         `json:"kafka_topic"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// non-empty value into config. Unreadable or invalid files panic.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ReferenceCurrency, c.ReferenceCurrency)
	setString(&config.PriceAPIBaseURL, c.PriceAPIBaseURL)
	setString(&config.PriceAPIKey, c.PriceAPIKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.KafkaTopic, c.KafkaTopic)

	if c.StrictSecret != nil {
		config.StrictSecret = *c.StrictSecret
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.PriceTimeout.Duration > 0 {
		config.PriceTimeout = c.PriceTimeout.Duration
	}
	if c.PriceCacheTTL.Duration > 0 {
		config.PriceCacheTTL = c.PriceCacheTTL.Duration
	}
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
