package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/NoviyantoPutraR/cms-pemkot/pkg/config"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/database"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Store         StoreConfig
	Elasticsearch ElasticsearchConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Resilience    ResilienceConfig
	Search        SearchConfig
	Autocomplete  AutocompleteConfig
	WebSocket     WebSocketConfig `mapstructure:"websocket"`
	PubSub        pubsub.Config   `mapstructure:"pubsub"`
	Auth          AuthConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	TimeZone        string `mapstructure:"timezone"`
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// ToDatabase converts to the shared database config.
func (d DatabaseConfig) ToDatabase() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		DBName:          d.DBName,
		SSLMode:         d.SSLMode,
		TimeZone:        d.TimeZone,
		FilePath:        d.FilePath,
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		LogLevel:        d.LogLevel,
	}
}

// StoreConfig selects where content items are read from.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "gorm" or "elasticsearch"
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Driver        string        `mapstructure:"driver"` // "memory" or "redis"
	Prefix        string        `mapstructure:"prefix"`
	SearchTTL     time.Duration `mapstructure:"search_ttl"`
	SuggestTTL    time.Duration `mapstructure:"suggest_ttl"`
	PageTTL       time.Duration `mapstructure:"page_ttl"`
	StatsTTL      time.Duration `mapstructure:"stats_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type ResilienceConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	ReadRetries  int           `mapstructure:"read_retries"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	WriteRetries int           `mapstructure:"write_retries"`
	StatTimeout  time.Duration `mapstructure:"stat_timeout"`
	Backoff      time.Duration `mapstructure:"backoff"`
}

// ReadPolicy is applied to every adapter read.
func (r ResilienceConfig) ReadPolicy() resilience.Policy {
	return resilience.Policy{Timeout: r.ReadTimeout, MaxRetries: r.ReadRetries, Backoff: r.Backoff}
}

// WritePolicy is applied to every create, update and delete.
func (r ResilienceConfig) WritePolicy() resilience.Policy {
	return resilience.Policy{Timeout: r.WriteTimeout, MaxRetries: r.WriteRetries, Backoff: r.Backoff}
}

type SearchConfig struct {
	DefaultLimit        int  `mapstructure:"default_limit"`
	MaxLimit            int  `mapstructure:"max_limit"`
	ExpandSynonyms      bool `mapstructure:"expand_synonyms"`
	Autocorrect         bool `mapstructure:"autocorrect"`
	CorrectionCacheSize int  `mapstructure:"correction_cache_size"`
}

type AutocompleteConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Limit    int           `mapstructure:"limit"`
	PerKind  int           `mapstructure:"per_kind"`
	MinChars int           `mapstructure:"min_chars"`
}

type WebSocketConfig struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type AuthConfig struct {
	PublicKeyFile string `mapstructure:"public_key_file"`
	Issuer        string `mapstructure:"issuer"`
	AdminRole     string `mapstructure:"admin_role"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

var defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "15s",
	"server.write_timeout":    "30s",
	"server.shutdown_timeout": "10s",

	"database.driver":            "postgres",
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "postgres",
	"database.password":          "postgres",
	"database.dbname":            "cms_pemkot",
	"database.sslmode":           "disable",
	"database.timezone":          "Asia/Jakarta",
	"database.file_path":         "./data/content.db",
	"database.max_idle_conns":    10,
	"database.max_open_conns":    100,
	"database.conn_max_lifetime": 60,
	"database.log_level":         "warn",
	"database.auto_migrate":      true,

	"store.backend": "gorm",

	"elasticsearch.addresses":    []string{"http://localhost:9200"},
	"elasticsearch.index_prefix": "cms",

	"redis.address":  "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"cache.driver":         "memory",
	"cache.prefix":         "cms",
	"cache.search_ttl":     "60s",
	"cache.suggest_ttl":    "30s",
	"cache.page_ttl":       "10m",
	"cache.stats_ttl":      "5m",
	"cache.sweep_interval": "5m",

	"resilience.read_timeout":  "10s",
	"resilience.read_retries":  2,
	"resilience.write_timeout": "10s",
	"resilience.write_retries": 2,
	"resilience.stat_timeout":  "2s",
	"resilience.backoff":       "1s",

	"search.default_limit":         12,
	"search.max_limit":             60,
	"search.expand_synonyms":       false,
	"search.autocorrect":           true,
	"search.correction_cache_size": 1024,

	"autocomplete.debounce":  "300ms",
	"autocomplete.limit":     8,
	"autocomplete.per_kind":  3,
	"autocomplete.min_chars": 2,

	"websocket.write_wait":       "10s",
	"websocket.pong_wait":        "60s",
	"websocket.ping_period":      "54s",
	"websocket.max_message_size": 4096,
	"websocket.send_buffer":      16,

	"pubsub.driver":              "none",
	"pubsub.redis.address":       "localhost:6379",
	"pubsub.redis.pool_size":     10,
	"pubsub.redis.read_timeout":  "3s",
	"pubsub.redis.write_timeout": "3s",
	"pubsub.kafka.brokers":       "localhost:9092",
	"pubsub.kafka.group_id":      "content-service",
	"pubsub.kafka.topic":         "content-changed",
	"pubsub.kafka.partitions":    3,

	"auth.public_key_file": "./keys/jwt_public.pem",
	"auth.issuer":          "cms-pemkot-auth",
	"auth.admin_role":      "admin",

	"log.level":  "info",
	"log.pretty": false,
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"database.driver":         "DB_DRIVER",
	"database.host":           "DB_HOST",
	"database.port":           "DB_PORT",
	"database.user":           "DB_USER",
	"database.password":       "DB_PASSWORD",
	"database.dbname":         "DB_NAME",
	"database.sslmode":        "DB_SSLMODE",
	"database.file_path":      "DB_FILE_PATH",
	"store.backend":           "STORE_BACKEND",
	"elasticsearch.addresses": "ES_ADDRESSES",
	"redis.address":           "REDIS_ADDRESS",
	"redis.password":          "REDIS_PASSWORD",
	"cache.driver":            "CACHE_DRIVER",
	"pubsub.driver":           "PUBSUB_DRIVER",
	"pubsub.redis.address":    "REDIS_ADDRESS",
	"pubsub.kafka.brokers":    "KAFKA_BROKERS",
	"auth.public_key_file":    "JWT_PUBLIC_KEY_FILE",
	"log.level":               "LOG_LEVEL",
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	pkgconfig.SetDefaults(v, defaults)
	if err := pkgconfig.BindEnvs(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
