package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Env       string       `mapstructure:"env"` // staging | production
	Log       LogConfig    `mapstructure:"log"`
	Engine    EngineConfig `mapstructure:"engine"`
	Store     StoreConfig  `mapstructure:"store"`
	Notify    NotifyConfig `mapstructure:"notify"`
	Ops       OpsConfig    `mapstructure:"ops"`
	OTel      OTelConfig   `mapstructure:"otel"`
	MaxChecks int          `mapstructure:"max_checks"` // per owner, enforced by checkctl
}

type LogConfig struct {
	Dir    string `mapstructure:"dir"`
	Level  string `mapstructure:"level"`
	Stdout bool   `mapstructure:"stdout"`
}

type EngineConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Concurrency    int           `mapstructure:"concurrency"` // 0 = unbounded
	DNSDiagnostics bool          `mapstructure:"dns_diagnostics"`
	UserAgent      string        `mapstructure:"user_agent"`
}

type StoreConfig struct {
	Driver       string        `mapstructure:"driver"` // memory | file | postgres | redis
	DataDir      string        `mapstructure:"data_dir"`
	DatabaseURL  string        `mapstructure:"database_url"`
	MaxConns     int32         `mapstructure:"max_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	RedisAddr    string        `mapstructure:"redis_addr"`
	RedisPass    string        `mapstructure:"redis_password"`
	RedisDB      int           `mapstructure:"redis_db"`
	RedisPrefix  string        `mapstructure:"redis_prefix"`
}

type NotifyConfig struct {
	Twilio       TwilioConfig `mapstructure:"twilio"`
	SlackWebhook string       `mapstructure:"slack_webhook"`
	Kafka        KafkaConfig  `mapstructure:"kafka"`
}

type TwilioConfig struct {
	AccountSID  string `mapstructure:"account_sid"`
	AuthToken   string `mapstructure:"auth_token"`
	FromPhone   string `mapstructure:"from_phone"`
	CountryCode string `mapstructure:"country_code"`
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromPhone != ""
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OpsConfig struct {
	Addr        string   `mapstructure:"addr"`
	PublicKeys  []string `mapstructure:"public_keys"`
	AdminKeys   []string `mapstructure:"admin_keys"`
	PublicRPM   int      `mapstructure:"public_rpm"`
	PublicBurst int      `mapstructure:"public_burst"`
	AdminRPM    int      `mapstructure:"admin_rpm"`
	AdminBurst  int      `mapstructure:"admin_burst"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type OTelConfig struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

var storeDrivers = []string{"memory", "file", "postgres", "redis"}

// FromEnv loads defaults overridden by environment variables only.
func FromEnv() (*Config, error) { return Load("") }

// Load reads defaults, then the optional YAML file at path, then the
// environment (ENGINE_INTERVAL overrides engine.interval and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("env", EnvStaging)

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", false)

	v.SetDefault("engine.interval", "60s")
	v.SetDefault("engine.concurrency", 0)
	v.SetDefault("engine.dns_diagnostics", false)
	v.SetDefault("engine.user_agent", "uptime-engine/1.0")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.data_dir", ".data")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.query_timeout", "2s")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "uptime:")

	v.SetDefault("notify.twilio.account_sid", "")
	v.SetDefault("notify.twilio.auth_token", "")
	v.SetDefault("notify.twilio.from_phone", "")
	v.SetDefault("notify.twilio.country_code", "+1")
	v.SetDefault("notify.slack_webhook", "")
	v.SetDefault("notify.kafka.brokers", []string{})
	v.SetDefault("notify.kafka.topic", "uptime.alerts")

	v.SetDefault("ops.addr", "127.0.0.1:8080")
	v.SetDefault("ops.public_keys", []string{})
	v.SetDefault("ops.admin_keys", []string{})
	v.SetDefault("ops.public_rpm", 60)
	v.SetDefault("ops.public_burst", 30)
	v.SetDefault("ops.admin_rpm", 30)
	v.SetDefault("ops.admin_burst", 10)
	v.SetDefault("ops.cors_origins", []string{})

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "uptime-engine")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("max_checks", 5)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names used by earlier deployments
	_ = v.BindEnv("store.database_url", "STORE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("ops.addr", "OPS_ADDR", "API_ADDR")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Ops.PublicKeys = cleanList(cfg.Ops.PublicKeys)
	cfg.Ops.AdminKeys = cleanList(cfg.Ops.AdminKeys)
	cfg.Ops.CORSOrigins = cleanList(cfg.Ops.CORSOrigins)
	cfg.Notify.Kafka.Brokers = cleanList(cfg.Notify.Kafka.Brokers)
	return &cfg, nil
}

// Validate reports every setting the engine cannot start with.
func (c *Config) Validate() error {
	var errs error
	if c.Env != EnvStaging && c.Env != EnvProduction {
		errs = multierr.Append(errs, fmt.Errorf("env: %q is not staging or production", c.Env))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Engine.Interval <= 0 {
		errs = multierr.Append(errs, errors.New("engine.interval: must be positive"))
	}
	if c.Engine.Concurrency < 0 {
		errs = multierr.Append(errs, errors.New("engine.concurrency: must be >= 0"))
	}
	if c.MaxChecks < 1 {
		errs = multierr.Append(errs, errors.New("max_checks: must be >= 1"))
	}

	switch c.Store.Driver {
	case "memory":
	case "file":
		if c.Store.DataDir == "" {
			errs = multierr.Append(errs, errors.New("store.data_dir: required for the file driver"))
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = multierr.Append(errs, errors.New("store.database_url: required for the postgres driver"))
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = multierr.Append(errs, errors.New("store.redis_addr: required for the redis driver"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("store.driver: %q is not one of %s", c.Store.Driver, strings.Join(storeDrivers, ", ")))
	}

	tw := c.Notify.Twilio
	if !tw.Enabled() && (tw.AccountSID != "" || tw.AuthToken != "" || tw.FromPhone != "") {
		errs = multierr.Append(errs, errors.New("notify.twilio: account_sid, auth_token and from_phone must be set together"))
	}
	if len(c.Notify.Kafka.Brokers) > 0 && c.Notify.Kafka.Topic == "" {
		errs = multierr.Append(errs, errors.New("notify.kafka.topic: required when brokers are set"))
	}
	if c.OTel.Enable && c.OTel.Endpoint == "" {
		errs = multierr.Append(errs, errors.New("otel.endpoint: required when otel is enabled"))
	}
	return errs
}

// Warnings lists settings that are allowed but probably unintended.
func (c *Config) Warnings() []string {
	var w []string
	if !c.Notify.Twilio.Enabled() && c.Notify.SlackWebhook == "" && len(c.Notify.Kafka.Brokers) == 0 {
		w = append(w, "no notification transport configured; alerts will only be logged")
	}
	if c.Store.Driver == "memory" {
		w = append(w, "memory store loses all checks on restart")
	}
	if len(c.Ops.PublicKeys) == 0 && len(c.Ops.AdminKeys) == 0 {
		w = append(w, "ops.public_keys and ops.admin_keys empty; /api routes are unauthenticated")
	}
	if c.Env == EnvProduction && c.Log.Level == "debug" {
		w = append(w, "debug logging in production")
	}
	return w
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
