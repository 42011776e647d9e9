package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"octavo/pkg/utils"
)

// DefaultPublicationRelays answer publication queries when the request
// carries no relay hints and no relays= override.
var DefaultPublicationRelays = []string{
	"wss://nostr.land",
	"wss://thecitadel.nostr1.com",
	"wss://nostr.wine",
	"wss://orly-relay.imwald.eu",
}

// DefaultArticleRelays answer long-form article queries.
var DefaultArticleRelays = []string{
	"wss://theforest.nostr1.com",
	"wss://nostr.land",
	"wss://thecitadel.nostr1.com",
	"wss://nostr.wine",
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development production"`

	// External renderer (document converter) endpoint
	PandocAPIURL      string        `yaml:"pandoc_api_url" validate:"required,url"`
	RenderTimeout     time.Duration `yaml:"render_timeout" validate:"min=1s"`
	RenderTimeoutMobi time.Duration `yaml:"render_timeout_mobi" validate:"min=1s"`

	// Relay sets
	PublicationRelays []string `yaml:"publication_relays" validate:"min=1,dive,required"`
	ArticleRelays     []string `yaml:"article_relays" validate:"min=1,dive,required"`

	// Fetch sizing
	FetchLimit int `yaml:"fetch_limit" validate:"min=1,max=5000"`

	// Cache TTLs per namespace family
	Cache CacheConfig `yaml:"cache"`

	// Media embedding limits
	Media MediaConfig `yaml:"media"`

	// Per-client conversion throttle
	Throttle ThrottleConfig `yaml:"throttle"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `yaml:"log_file"`

	// Feature flags
	EnableCORS bool `yaml:"enable_cors"`
}

// CacheConfig carries per-namespace TTLs and the caps that bound the mapped
// namespaces. A zero cap means the namespace is bounded by TTL alone.
type CacheConfig struct {
	ListTTL      time.Duration `yaml:"list_ttl" validate:"min=1s"`
	DetailTTL    time.Duration `yaml:"detail_ttl" validate:"min=1s"`
	HierarchyTTL time.Duration `yaml:"hierarchy_ttl" validate:"min=1s"`
	CommentsTTL  time.Duration `yaml:"comments_ttl" validate:"min=1s"`
	ProfileTTL   time.Duration `yaml:"profile_ttl" validate:"min=1s"`
	SearchTTL    time.Duration `yaml:"search_ttl" validate:"min=1s"`
	DerivedTTL   time.Duration `yaml:"derived_ttl" validate:"min=1s"`
	MediaTTL     time.Duration `yaml:"media_ttl" validate:"min=1s"`

	HighlightsCap   int `yaml:"highlights_cap" validate:"min=0"`
	DetailCap       int `yaml:"detail_cap" validate:"min=0"`
	HandleCap       int `yaml:"handle_cap" validate:"min=0"`
	ProfileEventCap int `yaml:"profile_event_cap" validate:"min=0"`
}

// ThrottleConfig bounds how fast one client may trigger document
// conversions. A zero burst disables the throttle.
type ThrottleConfig struct {
	ConversionBurst  int           `yaml:"conversion_burst" validate:"min=0"`
	ConversionRefill time.Duration `yaml:"conversion_refill" validate:"min=0"`
}

// MediaConfig bounds the media embedder
type MediaConfig struct {
	MaxEmbedBytes     int64         `yaml:"max_embed_bytes" validate:"min=1024"`
	ImageFetchTimeout time.Duration `yaml:"image_fetch_timeout" validate:"min=1s"`
	AVFetchTimeout    time.Duration `yaml:"av_fetch_timeout" validate:"min=1s"`
	MaxImageDimension int           `yaml:"max_image_dimension" validate:"min=100"`
	PNGConvertBytes   int64         `yaml:"png_convert_bytes" validate:"min=1024"`
}

// LoadConfig loads configuration from defaults, an optional YAML file named
// by OCTAVO_CONFIG, and environment variables, in ascending priority.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("OCTAVO_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns the built-in defaults
func defaultConfig() *Config {
	return &Config{
		ServerAddress:     ":8092",
		Environment:       "development",
		PandocAPIURL:      "http://localhost:8091",
		RenderTimeout:     60 * time.Second,
		RenderTimeoutMobi: 120 * time.Second,
		PublicationRelays: append([]string(nil), DefaultPublicationRelays...),
		ArticleRelays:     append([]string(nil), DefaultArticleRelays...),
		FetchLimit:        100,
		Cache: CacheConfig{
			ListTTL:         30 * time.Minute,
			DetailTTL:       60 * time.Minute,
			HierarchyTTL:    60 * time.Minute,
			CommentsTTL:     30 * time.Minute,
			ProfileTTL:      60 * time.Minute,
			SearchTTL:       10 * time.Minute,
			DerivedTTL:      24 * time.Hour,
			MediaTTL:        24 * time.Hour,
			HighlightsCap:   50,
			DetailCap:       100,
			HandleCap:       500,
			ProfileEventCap: 1000,
		},
		Media: MediaConfig{
			MaxEmbedBytes:     50 << 20,
			ImageFetchTimeout: 10 * time.Second,
			AVFetchTimeout:    30 * time.Second,
			MaxImageDimension: 1000,
			PNGConvertBytes:   512 << 10,
		},
		Throttle: ThrottleConfig{
			ConversionBurst:  6,
			ConversionRefill: 10 * time.Second,
		},
		LogLevel:   "info",
		EnableCORS: true,
	}
}

// applyEnvironment overlays environment variables, the highest priority
// configuration source.
func (c *Config) applyEnvironment() {
	if port := os.Getenv("PORT"); port != "" {
		c.ServerAddress = ":" + strings.TrimPrefix(port, ":")
	}
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.PandocAPIURL = getEnv("PANDOC_API_URL", c.PandocAPIURL)
	c.RenderTimeout = getEnvDuration("RENDER_TIMEOUT", c.RenderTimeout)
	c.RenderTimeoutMobi = getEnvDuration("RENDER_TIMEOUT_MOBI", c.RenderTimeoutMobi)

	if relays := os.Getenv("RELAYS_PUBLICATIONS"); relays != "" {
		c.PublicationRelays = splitList(relays)
	}
	if relays := os.Getenv("RELAYS_ARTICLES"); relays != "" {
		c.ArticleRelays = splitList(relays)
	}

	c.FetchLimit = getEnvInt("FETCH_LIMIT", c.FetchLimit)

	c.Cache.ListTTL = getEnvDuration("CACHE_TTL_LIST", c.Cache.ListTTL)
	c.Cache.DetailTTL = getEnvDuration("CACHE_TTL_DETAIL", c.Cache.DetailTTL)
	c.Cache.HierarchyTTL = getEnvDuration("CACHE_TTL_HIERARCHY", c.Cache.HierarchyTTL)
	c.Cache.CommentsTTL = getEnvDuration("CACHE_TTL_COMMENTS", c.Cache.CommentsTTL)
	c.Cache.ProfileTTL = getEnvDuration("CACHE_TTL_PROFILE", c.Cache.ProfileTTL)
	c.Cache.SearchTTL = getEnvDuration("CACHE_TTL_SEARCH", c.Cache.SearchTTL)
	c.Cache.DerivedTTL = getEnvDuration("CACHE_TTL_DERIVED", c.Cache.DerivedTTL)
	c.Cache.MediaTTL = getEnvDuration("CACHE_TTL_MEDIA", c.Cache.MediaTTL)

	c.Media.MaxEmbedBytes = getEnvInt64("MEDIA_MAX_EMBED_BYTES", c.Media.MaxEmbedBytes)
	c.Media.ImageFetchTimeout = getEnvDuration("MEDIA_IMAGE_TIMEOUT", c.Media.ImageFetchTimeout)
	c.Media.AVFetchTimeout = getEnvDuration("MEDIA_AV_TIMEOUT", c.Media.AVFetchTimeout)
	c.Media.MaxImageDimension = getEnvInt("MEDIA_MAX_DIMENSION", c.Media.MaxImageDimension)

	c.Throttle.ConversionBurst = getEnvInt("THROTTLE_CONVERSION_BURST", c.Throttle.ConversionBurst)
	c.Throttle.ConversionRefill = getEnvDuration("THROTTLE_CONVERSION_REFILL", c.Throttle.ConversionRefill)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// splitList splits a comma-separated environment value
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 gets a 64-bit integer environment variable with a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable ("90s", "10m") with a
// default value. Bare integers are taken as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
