package configuration

import (
	"errors"
	"fmt"
	"os"
	"time"

	"playlist-exporter/infrastructure/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Export      Export      `json:"export" mapstructure:"export"`
	App         App         `json:"app" mapstructure:"app"`
	Database    Database    `json:"database" mapstructure:"database"`
	RedisClient RedisClient `json:"redisClient" mapstructure:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub" mapstructure:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus" mapstructure:"serviceBus"`
	Cache       Cache       `json:"cache" mapstructure:"cache"`
	Logger      Logger      `json:"logger" mapstructure:"logger"`
}

type App struct {
	Port int `json:"port" mapstructure:"port"`
	// AllowOrigins lists CORS origins for serve. Empty allows any origin.
	AllowOrigins []string `json:"allowOrigins" mapstructure:"allowOrigins"`
}

// Database selects the optional videos/scraper_runs store. An empty driver disables it.
type Database struct {
	Driver string `json:"driver" mapstructure:"driver"` // postgres | sqlite3
	DSN    string `json:"dsn" mapstructure:"dsn"`
}

type RedisClient struct {
	Host     string        `json:"host" mapstructure:"host"`
	Port     string        `json:"port" mapstructure:"port"`
	Username string        `json:"username" mapstructure:"username"`
	Password string        `json:"password" mapstructure:"password"`
	TTL      time.Duration `json:"ttl" mapstructure:"ttl"`
}

type Pubsub struct {
	ProjectID string `json:"projectID" mapstructure:"projectID"`
	Topic     string `json:"topic" mapstructure:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace" mapstructure:"namespace"`
	Queue     string `json:"queue" mapstructure:"queue"`
}

// Cache configures the on-disk API response cache
type Cache struct {
	Path   string        `json:"path" mapstructure:"path"`
	MaxAge time.Duration `json:"maxAge" mapstructure:"maxAge"`
}

type Logger struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

const (
	DefaultPageSize  = 50
	DefaultBatchSize = 50
	DefaultPort      = 10001
)

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"export.apiKey":        "YOUTUBE_API_KEY",
	"export.accessToken":   "YOUTUBE_ACCESS_TOKEN",
	"export.playlistId":    "YOUTUBE_PLAYLIST_ID",
	"export.outputPath":    "OUTPUT_PATH",
	"export.pageSize":      "PAGE_SIZE",
	"export.batchSize":     "BATCH_SIZE",
	"export.endpoint":      "YOUTUBE_ENDPOINT",
	"export.ingest":        "INGEST",
	"app.port":             "APP_PORT",
	"app.allowOrigins":     "CORS_ALLOW_ORIGINS",
	"database.driver":      "DB_DRIVER",
	"database.dsn":         "DB_DSN",
	"redisClient.host":     "REDIS_HOST",
	"redisClient.port":     "REDIS_PORT",
	"redisClient.username": "REDIS_USERNAME",
	"redisClient.password": "REDIS_PASSWORD",
	"redisClient.ttl":      "REDIS_TTL",
	"pubsub.projectID":     "PUBSUB_PROJECT_ID",
	"pubsub.topic":         "PUBSUB_TOPIC",
	"serviceBus.namespace": "SERVICEBUS_NAMESPACE",
	"serviceBus.queue":     "SERVICEBUS_QUEUE",
	"cache.path":           "CACHE_PATH",
	"cache.maxAge":         "CACHE_MAX_AGE",
	"logger.format":        "LOG_FORMAT",
	"logger.level":         "LOG_LEVEL",
}

// flagBindings maps command-line flags to config keys
var flagBindings = map[string]string{
	"api-key":      "export.apiKey",
	"access-token": "export.accessToken",
	"playlist-id":  "export.playlistId",
	"output":       "export.outputPath",
	"page-size":    "export.pageSize",
	"batch-size":   "export.batchSize",
	"endpoint":     "export.endpoint",
	"ingest":       "export.ingest",
	"port":         "app.port",
}

// RegisterFlags defines the command-line flags understood by LoadConfig
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file path (default config[-ENV].json)")
	fs.String("api-key", "", "YouTube Data API key")
	fs.String("access-token", "", "pre-issued OAuth access token, used instead of an API key")
	fs.String("playlist-id", "", "playlist to export")
	fs.String("output", DefaultOutputPath, "CSV output path")
	fs.Int64("page-size", DefaultPageSize, "playlist items per page (max 50)")
	fs.Int("batch-size", DefaultBatchSize, "video IDs per lookup request (max 50)")
	fs.String("endpoint", "", "override the YouTube API endpoint")
	fs.Bool("ingest", false, "store exported videos in the configured database")
	fs.Int("port", DefaultPort, "HTTP port for serve")
}

// NewViper prepares a viper instance with defaults, env bindings and search paths
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(getConfig())
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	v.SetDefault("export.outputPath", DefaultOutputPath)
	v.SetDefault("export.pageSize", DefaultPageSize)
	v.SetDefault("export.batchSize", DefaultBatchSize)
	v.SetDefault("app.port", DefaultPort)
	v.SetDefault("redisClient.ttl", 10*time.Minute)
	v.SetDefault("cache.maxAge", 24*time.Hour)
	v.SetDefault("pubsub.topic", "playlist-export-runs")
	v.SetDefault("serviceBus.queue", "playlist-export-runs")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.level", "debug")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// BindFlags wires parsed flags into v; flags override env and file values
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagBindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
	}
	return nil
}

// LoadConfig reads the config file (if any) and decodes everything into a Config
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.GetLogger().Warn("Config file not found")
		} else if os.IsNotExist(err) {
			logger.GetLogger().WithField("file", v.ConfigFileUsed()).Warn("Config file not found")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Info("Config set up successfully")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	initExport(&c)
	initApp(&c)
	return &c, nil
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(c *Config) {
	if c.App.Port == 0 {
		c.App.Port = DefaultPort
	}
	if c.RedisClient.TTL <= 0 {
		c.RedisClient.TTL = 10 * time.Minute
	}
}
