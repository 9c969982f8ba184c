package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // provided.al2 images ship without zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	NameSourceFilename = "filename"
	NameSourceMetadata = "metadata"

	MetricsCloudWatch = "cloudwatch"
	MetricsPrometheus = "prometheus"
	MetricsNone       = "none"

	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`
	IsLambda      bool   `yaml:"isLambda"`

	// AWS configuration
	AWSRegion       string `yaml:"awsRegion"`
	CollectionID    string `yaml:"collectionId"`
	PeopleTable     string `yaml:"peopleTable"`
	AttendanceTable string `yaml:"attendanceTable"`
	DateIndexName   string `yaml:"dateIndexName"` // optional GSI on date
	EventBusName    string `yaml:"eventBusName"`
	EventSource     string `yaml:"eventSource"`

	// Workflow behaviour
	MatchThreshold   float64 `yaml:"matchThreshold"`
	TimeZone         string  `yaml:"timeZone"`
	AutoCreateTables bool    `yaml:"autoCreateTables"`
	NameSource       string  `yaml:"nameSource"`
	StorageBackend   string  `yaml:"storageBackend"`

	// Logging
	LogLevel string `yaml:"logLevel"`

	// Observability
	MetricsProvider  string `yaml:"metricsProvider"`
	MetricsNamespace string `yaml:"metricsNamespace"`
	EnableTracing    bool   `yaml:"enableTracing"`
	OTLPEndpoint     string `yaml:"otlpEndpoint"`
	EnableXRay       bool   `yaml:"enableXRay"`

	// HTTP
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`

	// Circuit breaker around the face service
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		AWSRegion:          "us-east-1",
		CollectionID:       "people",
		PeopleTable:        "people",
		AttendanceTable:    "daily_attendance",
		EventSource:        "attendance.backend",
		MatchThreshold:     90,
		TimeZone:           "UTC",
		AutoCreateTables:   true,
		NameSource:         NameSourceFilename,
		StorageBackend:     StorageDynamoDB,
		LogLevel:           "info",
		MetricsProvider:    MetricsNone,
		MetricsNamespace:   "Attendance",
		CORSAllowedOrigins: []string{"*"},
		Breaker: BreakerConfig{
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
	}
}

// LoadConfig loads defaults, then the optional CONFIG_FILE overlay, then
// environment variables, and validates the result
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.CollectionID = getEnv("COLLECTION_ID", c.CollectionID)
	c.PeopleTable = getEnv("PEOPLE_TABLE", c.PeopleTable)
	c.AttendanceTable = getEnv("ATTENDANCE_TABLE", c.AttendanceTable)
	c.DateIndexName = getEnv("DATE_INDEX_NAME", c.DateIndexName)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.EventSource = getEnv("EVENT_SOURCE", c.EventSource)

	c.MatchThreshold = getEnvFloat("MATCH_THRESHOLD", c.MatchThreshold)
	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)
	c.AutoCreateTables = getEnvBool("AUTO_CREATE_TABLES", c.AutoCreateTables)
	c.NameSource = getEnv("NAME_SOURCE", c.NameSource)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.MetricsProvider = getEnv("METRICS_PROVIDER", c.MetricsProvider)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	c.EnableXRay = getEnvBool("ENABLE_XRAY", c.EnableXRay)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}

	c.Breaker.MaxRequests = uint32(getEnvInt("BREAKER_MAX_REQUESTS", int(c.Breaker.MaxRequests)))
	c.Breaker.Interval = getEnvDuration("BREAKER_INTERVAL", c.Breaker.Interval)
	c.Breaker.Timeout = getEnvDuration("BREAKER_TIMEOUT", c.Breaker.Timeout)
	c.Breaker.FailureThreshold = getEnvFloat("BREAKER_FAILURE_THRESHOLD", c.Breaker.FailureThreshold)
	c.Breaker.MinRequests = uint32(getEnvInt("BREAKER_MIN_REQUESTS", int(c.Breaker.MinRequests)))
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.CollectionID == "" {
		return fmt.Errorf("COLLECTION_ID is required")
	}
	if c.PeopleTable == "" || c.AttendanceTable == "" {
		return fmt.Errorf("PEOPLE_TABLE and ATTENDANCE_TABLE are required")
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		return fmt.Errorf("MATCH_THRESHOLD must be between 0 and 100, got %v", c.MatchThreshold)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}

	switch c.NameSource {
	case NameSourceFilename, NameSourceMetadata:
	default:
		return fmt.Errorf("NAME_SOURCE must be %q or %q, got %q", NameSourceFilename, NameSourceMetadata, c.NameSource)
	}

	switch c.MetricsProvider {
	case MetricsCloudWatch, MetricsPrometheus, MetricsNone:
	default:
		return fmt.Errorf("unknown METRICS_PROVIDER %q", c.MetricsProvider)
	}

	switch c.StorageBackend {
	case StorageDynamoDB, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.IsProduction() && c.StorageBackend == StorageMemory {
		return fmt.Errorf("STORAGE_BACKEND=memory is not allowed in production")
	}

	return nil
}

// Location returns the configured time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
