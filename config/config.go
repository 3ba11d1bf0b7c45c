package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Payment  PaymentConfig
	Cleanup  CleanupConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// AdminConfig holds the operator credentials for /auth/admin/login. The
// matching users row is created on first login; admin login stays disabled
// while either value is unset.
type AdminConfig struct {
	Email    string
	Password string
}

// PaymentConfig selects the payment gateway implementation at startup.
// When GatewayURL is empty and Debug is false the server runs without a
// gateway and checkout requests report it as unavailable.
type PaymentConfig struct {
	GatewayURL  string
	Secret      string
	Debug       bool
	DebugSecret string
}

type CleanupConfig struct {
	RetentionHours   int
	IncludeCancelled bool
}

type CORSConfig struct {
	Origin string
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8081"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DB_URL", ""),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 2),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Payment: PaymentConfig{
			GatewayURL:  getEnv("PAYMENT_GATEWAY_URL", ""),
			Secret:      getEnv("PAYMENT_GATEWAY_SECRET", ""),
			Debug:       getEnvAsBool("PAYMENT_DEBUG", false),
			DebugSecret: getEnv("PAYMENT_DEBUG_SECRET", ""),
		},
		Cleanup: CleanupConfig{
			RetentionHours:   getEnvAsInt("CLEANUP_RETENTION_HOURS", 24),
			IncludeCancelled: getEnvAsBool("CLEANUP_INCLUDE_CANCELLED", true),
		},
		CORS: CORSConfig{
			Origin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
