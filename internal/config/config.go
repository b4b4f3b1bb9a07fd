package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host          string
	CollectorPort string
	HTTPPort      string
	LogLevel      string

	RedisURL   string
	NatsURL    string
	SessionTTL int // seconds

	// Terminal configuration handed to devices on STATUS/SETUP.
	StatusIntervalMinutes byte
	UploadIntervalSeconds uint16

	// Wi-Fi/cell rectification backend.
	GeolocURL    string
	GeolocAPIKey string

	JWTSecret string
}

func LoadConfig() *Config {
	return &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		CollectorPort: getEnv("COLLECTOR_PORT", "4303"),
		HTTPPort:      getEnv("HTTP_PORT", "8000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		RedisURL:   getEnv("REDIS_URL", ""),
		NatsURL:    getEnv("NATS_URL", ""),
		SessionTTL: getEnvInt("SESSION_TTL", 600),

		StatusIntervalMinutes: byte(getEnvInt("STATUS_INTERVAL_MINUTES", 25)),
		UploadIntervalSeconds: uint16(getEnvInt("UPLOAD_INTERVAL_SECONDS", 0x0300)),

		GeolocURL:    getEnv("GEOLOC_URL", "https://www.googleapis.com/geolocation/v1/geolocate"),
		GeolocAPIKey: getEnv("GEOLOC_API_KEY", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
