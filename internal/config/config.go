package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port" validate:"required,numeric"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	HTTPTimeout     time.Duration `json:"http_timeout" validate:"gt=0"`
	MaxUploadSize   int64         `json:"max_upload_size" validate:"gt=0"`

	// Storage
	DatabasePath string `json:"database_path" validate:"required"`
	ExportPath   string `json:"export_path" validate:"required"`
	TempDir      string `json:"temp_dir"`

	// Redis configuration. An empty URL selects the in-memory cache.
	RedisURL      string        `json:"redis_url"`
	RedisPrefix   string        `json:"redis_prefix"`
	ClipCacheTTL  time.Duration `json:"clip_cache_ttl"`
	ClipCacheSize int           `json:"clip_cache_size" validate:"gt=0"`
	RunLockTTL    time.Duration `json:"run_lock_ttl" validate:"gt=0"`

	// Narration (Amazon Polly)
	TTSEnabled        bool          `json:"tts_enabled"`
	AWSAccessKeyID    string        `json:"-"`
	AWSSecretKey      string        `json:"-"`
	PollyRegion       string        `json:"polly_region" validate:"required"`
	PollyEndpoint     string        `json:"polly_endpoint"`
	PollyVoiceID      string        `json:"polly_voice_id" validate:"required"`
	PollyEngine       string        `json:"polly_engine" validate:"oneof=standard neural long-form generative"`
	PollyLanguageCode string        `json:"polly_language_code"`
	PollySampleRate   int           `json:"polly_sample_rate" validate:"oneof=8000 16000"`
	TTSRequestDelay   time.Duration `json:"tts_request_delay" validate:"gte=0"`
	TTSTimeout        time.Duration `json:"tts_timeout" validate:"gt=0"`

	// Video synthesis
	NarrationGap       time.Duration `json:"narration_gap" validate:"gte=0"`
	TransitionDuration time.Duration `json:"transition_duration" validate:"gte=0"`
	MinHold            time.Duration `json:"min_hold" validate:"gt=0"`
	DrainDelay         time.Duration `json:"drain_delay" validate:"gte=0"`
	BackgroundTrack    string        `json:"background_track"`
	BackgroundGain     float64       `json:"background_gain" validate:"gte=0,lte=1"`
	FFmpegPath         string        `json:"ffmpeg_path"`
	DefaultOrientation string        `json:"default_orientation" validate:"oneof=landscape portrait"`

	// Article generation
	ArticleHead string `json:"article_head"`
	ArticleTail string `json:"article_tail"`

	// CloudFlare R2 Configuration (export mirror)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`

	// Airtable publishing sink
	AirtableToken  string `json:"-"`
	AirtableBaseID string `json:"airtable_base_id"`
	AirtableTable  string `json:"airtable_table"`

	// Logging
	LogLevel  string `json:"log_level" validate:"oneof=debug info warn error fatal panic disabled"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	AdminAPIKey string `json:"-"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 10<<20), // 10MB

		// Storage
		DatabasePath: getEnv("DATABASE_PATH", "./data/picreel.db"),
		ExportPath:   getEnv("EXPORT_PATH", "./data/exports"),
		TempDir:      getEnv("TEMP_DIR", os.TempDir()),

		// Redis configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", "picreel:"),
		ClipCacheTTL:  getEnvAsDuration("CLIP_CACHE_TTL", 720*time.Hour), // 30 days
		ClipCacheSize: getEnvAsInt("CLIP_CACHE_SIZE", 256),
		RunLockTTL:    getEnvAsDuration("RUN_LOCK_TTL", 30*time.Minute),

		// Narration
		TTSEnabled:        getEnvAsBool("TTS_ENABLED", false),
		AWSAccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		PollyRegion:       getEnv("POLLY_REGION", "ap-southeast-1"),
		PollyEndpoint:     getEnv("POLLY_ENDPOINT", ""),
		PollyVoiceID:      getEnv("POLLY_VOICE_ID", "Zhiyu"),
		PollyEngine:       getEnv("POLLY_ENGINE", "neural"),
		PollyLanguageCode: getEnv("POLLY_LANGUAGE_CODE", "cmn-CN"),
		PollySampleRate:   getEnvAsInt("POLLY_SAMPLE_RATE", 16000),
		TTSRequestDelay:   getEnvAsDuration("TTS_REQUEST_DELAY", 100*time.Millisecond),
		TTSTimeout:        getEnvAsDuration("TTS_TIMEOUT", 30*time.Second),

		// Video synthesis
		NarrationGap:       getEnvAsDuration("NARRATION_GAP", 500*time.Millisecond),
		TransitionDuration: getEnvAsDuration("TRANSITION_DURATION", time.Second),
		MinHold:            getEnvAsDuration("MIN_HOLD", time.Second),
		DrainDelay:         getEnvAsDuration("DRAIN_DELAY", 500*time.Millisecond),
		BackgroundTrack:    getEnv("BACKGROUND_TRACK", ""),
		BackgroundGain:     getEnvAsFloat("BACKGROUND_GAIN", 0.15),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		DefaultOrientation: getEnv("DEFAULT_ORIENTATION", "landscape"),

		// Article generation
		ArticleHead: getEnv("ARTICLE_HEAD", ""),
		ArticleTail: getEnv("ARTICLE_TAIL", ""),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "picreel"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		// Airtable
		AirtableToken:  getEnv("AIRTABLE_TOKEN", ""),
		AirtableBaseID: getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTable:  getEnv("AIRTABLE_TABLE", "Records"),

		// Logging
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the struct constraints declared on Config
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// R2Enabled reports whether the export mirror has enough settings to be used
func (c *Config) R2Enabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != "" && c.R2Bucket != ""
}

// AirtableEnabled reports whether the publishing sink is configured
func (c *Config) AirtableEnabled() bool {
	return c.AirtableToken != "" && c.AirtableBaseID != ""
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
