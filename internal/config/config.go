package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service   Service
	SQS       SQS
	Database  Database
	Valkey    Valkey
	Consumer  Consumer
	Channels  Channels
	Instagram Instagram
	Crawler   Crawler
}

type Service struct {
	Environment string `envconfig:"ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"API_PORT" default:"8080"`
	PublicHost  string `envconfig:"PUBLIC_HOST" default:"localhost:8080"`
}

type SQS struct {
	Endpoint string `envconfig:"ENDPOINT"`
	QueueURL string `envconfig:"QUEUE_URL" required:"true"`
	Region   string `envconfig:"REGION" required:"true"`
}

// Database selects the relational store. Driver is "sqlite" or "mysql".
// Keys are prefixed so that envconfig's unprefixed fallback never picks up
// generic variables such as PATH or HOST.
type Database struct {
	Driver          string `envconfig:"DRIVER" default:"sqlite"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"activities.db"`
	MySQLHost       string `envconfig:"MYSQL_HOST"`
	MySQLPort       string `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLName       string `envconfig:"MYSQL_NAME"`
	MySQLUser       string `envconfig:"MYSQL_USERNAME"`
	MySQLPassword   string `envconfig:"MYSQL_PASSWORD"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Valkey struct {
	Addr                 string        `envconfig:"ADDR"`
	IdempotencyEnabled   bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"false"`
	IdempotencyFailOpen  bool          `envconfig:"IDEMPOTENCY_FAIL_OPEN" default:"true"`
	IdempotencyTTLSecond int           `envconfig:"IDEMPOTENCY_TTL_SEC" default:"120"`
	DialTimeout          time.Duration `envconfig:"DIAL_TIMEOUT" default:"2s"`
}

type Consumer struct {
	Workers            int    `envconfig:"WORKERS" default:"4"`
	HealthCheckPort    string `envconfig:"HEALTH_CHECK_PORT" default:"8081"`
	CrawlTimeoutSec    int    `envconfig:"CRAWL_TIMEOUT_SEC" default:"60"`
	MaxMessages        int32  `envconfig:"MAX_MESSAGES" default:"10"`
	WaitTimeSeconds    int32  `envconfig:"WAIT_TIME_SECONDS" default:"20"`
	ReceiveBackoffMsec int    `envconfig:"RECEIVE_BACKOFF_MSEC" default:"1000"`
}

// Channels maps chat channel identifiers to activity categories.
type Channels struct {
	Camp        string `envconfig:"CAMP" required:"true"`
	Competition string `envconfig:"COMPETITION" required:"true"`
	Other       string `envconfig:"OTHER" required:"true"`
}

type Instagram struct {
	AppID      string `envconfig:"APP_ID" required:"true"`
	Endpoint   string `envconfig:"ENDPOINT" default:"https://www.instagram.com/graphql/query/"`
	TimeoutSec int    `envconfig:"TIMEOUT_SEC" default:"15"`
}

type Crawler struct {
	UserAgent         string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"`
	RequestTimeoutSec int    `envconfig:"REQUEST_TIMEOUT_SEC" default:"30"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %q (supported: sqlite, mysql)", c.Database.Driver)
	}

	seen := map[string]string{}
	for name, id := range map[string]string{
		"camp":        c.Channels.Camp,
		"competition": c.Channels.Competition,
		"other":       c.Channels.Other,
	} {
		if id == "" {
			return fmt.Errorf("channel identifier for %s must not be empty", name)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("channel %q is configured for both %s and %s", id, prev, name)
		}
		seen[id] = name
	}

	if c.Database.Driver == "mysql" && c.Database.MySQLHost == "" {
		return fmt.Errorf("DATABASE_MYSQL_HOST is required for the mysql driver")
	}

	if c.Valkey.IdempotencyEnabled && c.Valkey.Addr == "" {
		return fmt.Errorf("VALKEY_ADDR is required when idempotency is enabled")
	}

	return nil
}

// CrawlTimeout bounds a single isolated crawl.
func (c *Consumer) CrawlTimeout() time.Duration {
	return time.Duration(c.CrawlTimeoutSec) * time.Second
}
