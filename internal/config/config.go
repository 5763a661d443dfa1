package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App    App    `mapstructure:"app"`
	Gemini Gemini `mapstructure:"gemini"`
	Tavily Tavily `mapstructure:"tavily"`
	Mongo  Mongo  `mapstructure:"mongo"`
	Fetch  Fetch  `mapstructure:"fetch"`
	Index  Index  `mapstructure:"index"`
	Cache  Cache  `mapstructure:"cache"`
	Server Server `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Gemini holds Google Gemini configuration
type Gemini struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float32 `mapstructure:"temperature"`
}

// Tavily holds trend-search provider configuration
type Tavily struct {
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Mongo holds the durable report store configuration
type Mongo struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// Fetch holds article fetcher configuration
type Fetch struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

// Index holds embedding index configuration
type Index struct {
	Directory string `mapstructure:"directory"`
}

// Cache holds the SQLite article cache configuration
type Cache struct {
	Directory  string        `mapstructure:"directory"`
	ArticleTTL time.Duration `mapstructure:"article_ttl"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSEnabled  bool          `mapstructure:"cors_enabled"`
}

// Load loads configuration from a .env file (if present), an optional YAML
// config file, and OKRLENS_-prefixed environment variables, in increasing
// order of precedence.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".okrlens")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.SetEnvPrefix("OKRLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.data_dir", ".okrlens")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("gemini.temperature", 0.0)

	v.SetDefault("tavily.max_results", 10)
	v.SetDefault("tavily.timeout", "30s")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "okr_database")
	v.SetDefault("mongo.collection", "compiled_results")

	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.max_chars", 4000)

	v.SetDefault("index.directory", ".okrlens/index")

	v.SetDefault("cache.directory", ".okrlens")
	v.SetDefault("cache.article_ttl", "24h")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.cors_enabled", true)
}

// bindEnvironmentVariables supports the unprefixed key names the collaborating
// services are conventionally configured with.
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
	})
	bindEnvKeys(v, "tavily.api_key", []string{
		"TAVILY_API_KEY",
	})
	bindEnvKeys(v, "mongo.uri", []string{
		"MONGO_URI",
		"MONGODB_URI",
	})
}

// bindEnvKeys binds a config key to multiple possible environment variables
func bindEnvKeys(v *viper.Viper, configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(configKey, value)
			return
		}
	}
}
