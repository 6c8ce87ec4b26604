package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Observability ObservabilityConfig

	// PracticeTimezone is the IANA zone used to compute month windows.
	PracticeTimezone string
	PractitionerName string

	Stripe      StripeConfig
	GoHighLevel GoHighLevelConfig
	Redis       RedisConfig

	PeriodCacheTTL time.Duration

	Reviewer ReviewerConfig
}

// ObservabilityConfig feeds logging, tracing and metrics. Tracing and OTLP
// metric export stay off unless OTEL_ENABLED is set.
type ObservabilityConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OTLPEndpoint  string
	OTLPProtocol  string
	SamplingRatio float64
}

type StripeConfig struct {
	SecretKey        string
	BaseURL          string
	ConsultationOnly bool
}

type GoHighLevelConfig struct {
	APIKey     string
	LocationID string
	BaseURL    string
	APIVersion string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ReviewerConfig struct {
	APIURL        string
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "consultinvoice"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      getenv("ENVIRONMENT", "development"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		PracticeTimezone: strings.TrimSpace(getenv("PRACTICE_TIMEZONE", "UTC")),
		PractitionerName: strings.TrimSpace(getenv("PRACTITIONER_NAME", "")),
		Observability: ObservabilityConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OTLPEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OTLPProtocol:  otlpProtocol(),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Stripe: StripeConfig{
			SecretKey:        strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			BaseURL:          strings.TrimRight(getenv("STRIPE_API_BASE", "https://api.stripe.com"), "/"),
			ConsultationOnly: getenvBool("STRIPE_CONSULTATION_ONLY", true),
		},
		GoHighLevel: GoHighLevelConfig{
			APIKey:     strings.TrimSpace(getenv("GHL_API_KEY", "")),
			LocationID: strings.TrimSpace(getenv("GHL_LOCATION_ID", "")),
			BaseURL:    strings.TrimRight(getenv("GHL_API_BASE", "https://services.leadconnectorhq.com"), "/"),
			APIVersion: getenv("GHL_API_VERSION", "2021-04-15"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		PeriodCacheTTL: time.Duration(getenvInt64("PERIOD_CACHE_TTL_SECONDS", 60)) * time.Second,
		Reviewer: ReviewerConfig{
			APIURL:        strings.TrimRight(getenv("REVIEWER_API_URL", "http://localhost:8080"), "/"),
			StorePath:     getenv("REVIEWER_STORE_PATH", defaultStorePath()),
			RedisAddr:     strings.TrimSpace(getenv("REVIEWER_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("REVIEWER_REDIS_PASSWORD", "")),
			RedisDB:       int(getenvInt64("REVIEWER_REDIS_DB", 0)),
		},
	}

	return cfg
}

// Location resolves the practice time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.PracticeTimezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) StripeConfigured() bool {
	return c.Stripe.SecretKey != ""
}

func (c Config) GoHighLevelConfigured() bool {
	return c.GoHighLevel.APIKey != "" && c.GoHighLevel.LocationID != ""
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "consultinvoice.db"
	}
	return dir + string(os.PathSeparator) + "consultinvoice" + string(os.PathSeparator) + "approvals.db"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// otlpProtocol prefers the traces-specific override over the shared setting.
func otlpProtocol() string {
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); v != "" {
		return strings.ToLower(v)
	}
	return strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
