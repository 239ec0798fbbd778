package config

import (
	"os"
	"strconv"
	"strings"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	SMTP      SMTPConfig      `json:"smtp"`
	Session   SessionConfig   `json:"session"`
	Upload    UploadConfig    `json:"upload"`
	Store     StoreConfig     `json:"store"`
	Stats     StatsConfig     `json:"stats"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Orders string `json:"orders"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// SMTPConfig описывает настройки почтового клиента
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// Enabled сообщает, достаточно ли настроек для отправки почты.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

// SessionConfig описывает настройки админских сессий
type SessionConfig struct {
	CookieName   string `json:"cookie_name"`
	TTLHours     int    `json:"ttl_hours"`
	CookieSecure bool   `json:"cookie_secure"`
}

// UploadConfig описывает настройки загрузки файлов
type UploadConfig struct {
	Dir        string `json:"dir"`
	MaxSizeMB  int    `json:"max_size_mb"`
	PublicPath string `json:"public_path"`
}

// StoreConfig хранит параметры магазина
type StoreConfig struct {
	SiteName         string `json:"site_name"`
	AdminEmail       string `json:"admin_email"`
	PublicBaseURL    string `json:"public_base_url"`
	DefaultWhatsApp  string `json:"default_whatsapp"`
	HomepageCacheTTL int    `json:"homepage_cache_ttl_seconds"`
	FeaturedProducts int    `json:"featured_products"`
}

// StatsConfig хранит настройки админской статистики
type StatsConfig struct {
	CacheTTLMinutes       int `json:"cache_ttl_minutes"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
	// CheckoutRequests — отдельный, более жёсткий лимит для оформления
	// заказа и проверки промокодов.
	CheckoutRequests int `json:"checkout_requests"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "storefront_user"),
			Password: getEnv("DB_PASSWORD", "storefront_pass"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "storefront-service"),
			Topics: Topics{
				Orders: getEnv("KAFKA_TOPIC_ORDERS", "orders"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "session_id"),
			TTLHours:     getEnvAsInt("SESSION_TTL_HOURS", 24),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "./uploads"),
			MaxSizeMB:  getEnvAsInt("UPLOAD_MAX_SIZE_MB", 5),
			PublicPath: getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		},
		Store: StoreConfig{
			SiteName:         getEnv("SITE_NAME", "Twenti Studio"),
			AdminEmail:       getEnv("ADMIN_EMAIL", ""),
			PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			DefaultWhatsApp:  getEnv("DEFAULT_WHATSAPP_NUMBER", "6281234567890"),
			HomepageCacheTTL: getEnvAsInt("HOMEPAGE_CACHE_TTL_SECONDS", 60),
			FeaturedProducts: getEnvAsInt("FEATURED_PRODUCTS", 6),
		},
		Stats: StatsConfig{
			CacheTTLMinutes:       getEnvAsInt("STATS_CACHE_TTL_MINUTES", 5),
			RequestTimeoutSeconds: getEnvAsInt("STATS_REQUEST_TIMEOUT_SECONDS", 5),
		},
		RateLimit: RateLimitConfig{
			Enabled:          getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:         getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds:    getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:        getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
			CheckoutRequests: getEnvAsInt("RATE_LIMIT_CHECKOUT_REQUESTS", 10),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
