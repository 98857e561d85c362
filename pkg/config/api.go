package config

import "time"

// APIConfig holds runtime configuration for the users API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DBHost             string
	DBPort             int
	DBUser             string
	DBPassword         string
	DBName             string
	DBCharset          string
	DBConnectTimeout   time.Duration
	MigrationsDir      string
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
	WSEventBuffer      int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
// The AZURE_MYSQL_* names match the managed-database bindings the
// service is deployed with.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		DBHost:             GetString("AZURE_MYSQL_HOST", "localhost"),
		DBPort:             GetInt("AZURE_MYSQL_PORT", 3306),
		DBUser:             GetString("AZURE_MYSQL_USER", "root"),
		DBPassword:         GetString("AZURE_MYSQL_PASSWORD", ""),
		DBName:             GetString("AZURE_MYSQL_NAME", "app"),
		DBCharset:          GetString("AZURE_MYSQL_CHARSET", "utf8mb4"),
		DBConnectTimeout:   time.Duration(GetInt("DB_CONNECT_TIMEOUT_SECONDS", 5)) * time.Second,
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
		WSEventBuffer:      GetInt("WS_EVENT_BUFFER", 100),
	}
}
