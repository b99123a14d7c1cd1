package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Env             string `mapstructure:"env"`
	Port            string `mapstructure:"port"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTCfg struct {
	Secret     string `mapstructure:"secret"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

type StorageCfg struct {
	Backend   string `mapstructure:"backend"` // "disk" or "s3"
	UploadDir string `mapstructure:"upload_dir"`
	S3Region  string `mapstructure:"s3_region"`
	S3Bucket  string `mapstructure:"s3_bucket"`
}

type RelayCfg struct {
	EventsPerSec    int `mapstructure:"events_per_sec"`
	SendBuffer      int `mapstructure:"send_buffer"`
	MaxMessageBytes int `mapstructure:"max_message_bytes"`
	PingSeconds     int `mapstructure:"ping_seconds"`
}

type Config struct {
	App     AppCfg     `mapstructure:"app"`
	Mongo   MongoCfg   `mapstructure:"mongo"`
	Redis   RedisCfg   `mapstructure:"redis"`
	Kafka   KafkaCfg   `mapstructure:"kafka"`
	JWT     JWTCfg     `mapstructure:"jwt"`
	Storage StorageCfg `mapstructure:"storage"`
	Relay   RelayCfg   `mapstructure:"relay"`

	// Derived
	ShutdownTimeout time.Duration
	TokenTTL        time.Duration
	PingInterval    time.Duration
}

// Load reads config.yaml from path (or the working directory when path is
// empty) with APP_ environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("app.shutdown_seconds", 10)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "quickchat")
	v.SetDefault("redis.prefix", "qc")
	v.SetDefault("jwt.ttl_minutes", 60*24)
	v.SetDefault("storage.backend", "disk")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("relay.events_per_sec", 20)
	v.SetDefault("relay.send_buffer", 256)
	v.SetDefault("relay.max_message_bytes", 64*1024)
	v.SetDefault("relay.ping_seconds", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.TokenTTL = time.Duration(cfg.JWT.TTLMinutes) * time.Minute
	cfg.PingInterval = time.Duration(cfg.Relay.PingSeconds) * time.Second
	return &cfg, nil
}
