package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultExtractionPattern matches the legacy single-field <pic prompt="..."> markup globally.
const DefaultExtractionPattern = `/<pic[^>]*\sprompt="([^"]*)"[^>]*?>/g`

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Matcher    MatcherConfig    `mapstructure:"matcher"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite or postgres
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // s3, r2, s3compatible, minio
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// VocabularyConfig selects where the canonical tag vocabulary is read from.
type VocabularyConfig struct {
	Source    string        `mapstructure:"source"` // file, http, object
	Path      string        `mapstructure:"path"`
	URL       string        `mapstructure:"url"`
	ObjectKey string        `mapstructure:"object_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type MatcherConfig struct {
	Enabled       bool              `mapstructure:"enabled"`
	UseFuzzyBest  bool              `mapstructure:"use_fuzzy_best"`
	KeepUnmatched bool              `mapstructure:"keep_unmatched"`
	ShowStats     bool              `mapstructure:"show_stats"`
	ExtraSynonyms map[string]string `mapstructure:"extra_synonyms"`
	Fuzzy         FuzzyConfig       `mapstructure:"fuzzy"`
}

type FuzzyConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Threshold      float64 `mapstructure:"threshold"`
	Distance       int     `mapstructure:"distance"`
	MinMatchLength int     `mapstructure:"min_match_length"`
	Limit          int     `mapstructure:"limit"`
	CacheSize      int     `mapstructure:"cache_size"`
}

type ExtractionConfig struct {
	Pattern string `mapstructure:"pattern"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Explicit bindings for deployment-provided secrets
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("vocabulary.url", "VOCABULARY_URL")
	v.BindEnv("extraction.pattern", "EXTRACTION_PATTERN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/picprompt.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.bucket", "picprompt")
	v.SetDefault("vocabulary.source", "file")
	v.SetDefault("vocabulary.path", "./data/tags.json")
	v.SetDefault("vocabulary.object_key", "vocabulary/tags.json")
	v.SetDefault("vocabulary.timeout", 30*time.Second)
	v.SetDefault("matcher.enabled", true)
	v.SetDefault("matcher.use_fuzzy_best", true)
	v.SetDefault("matcher.keep_unmatched", true)
	v.SetDefault("matcher.show_stats", false)
	v.SetDefault("matcher.fuzzy.enabled", true)
	v.SetDefault("matcher.fuzzy.threshold", 0.3)
	v.SetDefault("matcher.fuzzy.distance", 50)
	v.SetDefault("matcher.fuzzy.min_match_length", 2)
	v.SetDefault("matcher.fuzzy.limit", 5)
	v.SetDefault("matcher.fuzzy.cache_size", 4096)
	v.SetDefault("extraction.pattern", DefaultExtractionPattern)
}
