package environments

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	Gateway  GatewayConfig
	SMTP     SMTPConfig
	Dispatch DispatchConfig
	OTP      OTPConfig
	Alert    AlertConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// QueueConfig selects the dispatch queue backend: valkey, kafka or memory.
type QueueConfig struct {
	Backend      string
	Name         string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	MemoryBuffer int
}

type WorkerConfig struct {
	Count        int
	AutoStart    bool
	RestartDelay time.Duration
	DedupeTTL    time.Duration
}

type GatewayConfig struct {
	Timeout    time.Duration
	RetryCount int
}

type SMTPConfig struct {
	Username string
	Password string
	From     string
}

type DispatchConfig struct {
	// EmailExcludedTemplates is a list of template ids and inclusive ranges, e.g. "2-6,10".
	EmailExcludedTemplates string
}

type OTPConfig struct {
	TemplateID int64
	TTL        time.Duration
}

type AlertConfig struct {
	WebhookURL       string
	FailureThreshold int
}

type AuthConfig struct {
	DispatchAPIKey string
	AdminAPIKey    string
}

type LogConfig struct {
	Env    string
	Level  string
	Format string
}

// Load reads configuration from the environment. Values from a local .env file
// are applied first when the file exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "dispatch"),
			Password: GetEnv("DB_PASSWORD", "dispatch123"),
			DBName:   GetEnv("DB_NAME", "dispatch"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Backend:      GetEnv("QUEUE_BACKEND", "valkey"),
			Name:         GetEnv("QUEUE_NAME", "dispatch:jobs"),
			KafkaBrokers: GetEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:   GetEnv("KAFKA_TOPIC", "dispatch-jobs"),
			KafkaGroupID: GetEnv("KAFKA_GROUP_ID", "dispatch-workers"),
			MemoryBuffer: GetEnvAsInt("QUEUE_MEMORY_BUFFER", 1024),
		},
		Worker: WorkerConfig{
			Count:        GetEnvAsInt("WORKER_COUNT", 4),
			AutoStart:    GetEnvAsBool("WORKER_AUTO_START", true),
			RestartDelay: GetEnvAsDuration("WORKER_RESTART_DELAY", 2*time.Second),
			DedupeTTL:    GetEnvAsDuration("WORKER_DEDUPE_TTL", 24*time.Hour),
		},
		Gateway: GatewayConfig{
			Timeout:    GetEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second),
			RetryCount: GetEnvAsInt("GATEWAY_RETRY_COUNT", 0),
		},
		SMTP: SMTPConfig{
			Username: GetEnv("SMTP_USERNAME", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			From:     GetEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Dispatch: DispatchConfig{
			EmailExcludedTemplates: GetEnv("DISPATCH_EMAIL_EXCLUDED_TEMPLATES", "2-6,10"),
		},
		OTP: OTPConfig{
			TemplateID: int64(GetEnvAsInt("OTP_TEMPLATE_ID", 2)),
			TTL:        GetEnvAsDuration("OTP_TTL", 5*time.Minute),
		},
		Alert: AlertConfig{
			WebhookURL:       GetEnv("ALERT_WEBHOOK_URL", ""),
			FailureThreshold: GetEnvAsInt("ALERT_FAILURE_THRESHOLD", 0),
		},
		Auth: AuthConfig{
			DispatchAPIKey: GetEnv("DISPATCH_API_KEY", ""),
			AdminAPIKey:    GetEnv("ADMIN_API_KEY", ""),
		},
		Log: LogConfig{
			Env:    GetEnv("LOG_ENV", "development"),
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsSlice splits a comma-separated value and drops empty items.
func GetEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}
	return items
}
