package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env" validate:"oneof=development production test"`
	Port           int    `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds" validate:"min=1"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" validate:"min=1"`
}

type MongoConf struct {
	URI        string `mapstructure:"uri" validate:"required"`
	Database   string `mapstructure:"database" validate:"required"`
	Collection string `mapstructure:"collection" validate:"required"`
}

type StorageConf struct {
	Driver         string   `mapstructure:"driver" validate:"oneof=s3 minio"`
	Region         string   `mapstructure:"region"`
	Bucket         string   `mapstructure:"bucket" validate:"required"`
	Endpoint       string   `mapstructure:"endpoint" validate:"required_if=Driver minio"`
	AccessKey      string   `mapstructure:"access_key"`
	SecretKey      string   `mapstructure:"secret_key"`
	UseSSL         bool     `mapstructure:"use_ssl"`
	PublicRead     bool     `mapstructure:"public_read"`
	PresignTTL     int      `mapstructure:"presign_ttl_seconds" validate:"min=1"`
	Folder         string   `mapstructure:"folder" validate:"required"`
	AllowedFormats []string `mapstructure:"allowed_formats" validate:"min=1,dive,required"`
}

type RedisConf struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	UploadLimit   int    `mapstructure:"upload_limit" validate:"min=0"`
	WindowSeconds int    `mapstructure:"window_seconds" validate:"min=1"`
}

type EventsConf struct {
	Driver  string   `mapstructure:"driver" validate:"oneof=none kafka nats"`
	Topic   string   `mapstructure:"topic" validate:"required"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Driver kafka"`
	NatsURL string   `mapstructure:"nats_url" validate:"required_if=Driver nats"`
}

type LogConf struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type WebConf struct {
	Port           int    `mapstructure:"port" validate:"min=1,max=65535"`
	APIBaseURL     string `mapstructure:"api_base_url" validate:"required,url"`
	PublicOrigin   string `mapstructure:"public_origin" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1"`
}

type Config struct {
	App     AppConf     `mapstructure:"app"`
	Mongo   MongoConf   `mapstructure:"mongo"`
	Storage StorageConf `mapstructure:"storage"`
	Redis   RedisConf   `mapstructure:"redis"`
	Events  EventsConf  `mapstructure:"events"`
	Log     LogConf     `mapstructure:"log"`
	Web     WebConf     `mapstructure:"web"`

	// derived
	ShutdownTimeout time.Duration `mapstructure:"-"`
	PresignTTL      time.Duration `mapstructure:"-"`
	RateWindow      time.Duration `mapstructure:"-"`
	WebTimeout      time.Duration `mapstructure:"-"`
}

// Binary selects which sections Load validates. The web client never touches
// Mongo, storage, Redis or events, so it does not need them configured.
type Binary int

const (
	API Binary = iota
	Web
)

func (c *Config) Development() bool {
	return c.App.Env == "development"
}

// MaxUploadBytes is the request body limit handed to fiber.
func (c *Config) MaxUploadBytes() int {
	return c.App.MaxUploadMB * 1024 * 1024
}

// Load reads .env (if present), then the YAML file at path, then environment
// overrides such as MONGO_URI or STORAGE_BUCKET. An empty path skips the file.
func Load(path string, b Binary) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is what most PaaS hosts inject
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage.AllowedFormats = normalizeFormats(cfg.Storage.AllowedFormats)

	if err := cfg.validate(b); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.PresignTTL = time.Duration(cfg.Storage.PresignTTL) * time.Second
	cfg.RateWindow = time.Duration(cfg.Redis.WindowSeconds) * time.Second
	cfg.WebTimeout = time.Duration(cfg.Web.TimeoutSeconds) * time.Second
	return &cfg, nil
}

func (c *Config) validate(b Binary) error {
	sections := []interface{}{c.App, c.Log}
	switch b {
	case API:
		sections = append(sections, c.Mongo, c.Storage, c.Redis, c.Events)
	case Web:
		sections = append(sections, c.Web)
	default:
		return fmt.Errorf("unknown binary %d", b)
	}
	v := validator.New()
	for _, s := range sections {
		if err := v.Struct(s); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.shutdown_seconds", 15)
	v.SetDefault("app.max_upload_mb", 50)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "music_share")
	v.SetDefault("mongo.collection", "files")

	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.public_read", false)
	v.SetDefault("storage.presign_ttl_seconds", 600)
	v.SetDefault("storage.folder", "music-share-app")
	v.SetDefault("storage.allowed_formats", []string{"mp3", "wav", "flac"})

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.upload_limit", 20)
	v.SetDefault("redis.window_seconds", 60)

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.topic", "music-share.file-uploaded")
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.nats_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("web.port", 3000)
	v.SetDefault("web.api_base_url", "http://localhost:5000")
	v.SetDefault("web.public_origin", "")
	v.SetDefault("web.timeout_seconds", 60)
}

func normalizeFormats(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
