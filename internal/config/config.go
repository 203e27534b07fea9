package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sosapp/internal/validators"
)

type Config struct {
	App       *AppConfig       `yaml:"app"`
	Log       *LogConfig       `yaml:"log"`
	Database  *DatabaseConfig  `yaml:"database"`
	Redis     *RedisConfig     `yaml:"redis"`
	SMS       *SMSConfig       `yaml:"sms"`
	Push      *PushConfig      `yaml:"push"`
	Maps      *MapsConfig      `yaml:"maps"`
	Storage   *StorageConfig   `yaml:"storage"`
	WebSocket *WebSocketConfig `yaml:"websocket"`
	Sharing   *SharingConfig   `yaml:"sharing"`
	Location  *LocationConfig  `yaml:"location"`
	Capture   *CaptureConfig   `yaml:"capture"`
	Media     *MediaConfig     `yaml:"media"`
}

type AppConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	BaseURL         string        `yaml:"base_url"`
	Debug           bool          `yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Caller bool   `yaml:"caller"`
}

// Load builds the configuration from the environment.
func Load() (*Config, error) {
	config := &Config{
		App:       loadAppConfig(),
		Log:       loadLogConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		SMS:       loadSMSConfig(),
		Push:      loadPushConfig(),
		Maps:      loadMapsConfig(),
		Storage:   loadStorageConfig(),
		WebSocket: loadWebSocketConfig(),
		Sharing:   loadSharingConfig(),
		Location:  loadLocationConfig(),
		Capture:   loadCaptureConfig(),
		Media:     loadMediaConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile starts from the environment and overlays the YAML file at path.
// Keys present in the file win over the environment.
func LoadFile(path string) (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid app port %d", c.App.Port)
	}
	if c.Sharing.Watch.MinInterval < 0 {
		return fmt.Errorf("sharing min interval must not be negative")
	}
	if c.Sharing.Watch.MinDistance < 0 {
		return fmt.Errorf("sharing min distance must not be negative")
	}
	for i, recipient := range c.Sharing.Recipients {
		if strings.TrimSpace(recipient) == "" {
			return fmt.Errorf("sharing recipient #%d is empty", i+1)
		}
		if err := validators.ValidatePhone(recipient); err != nil {
			return fmt.Errorf("sharing recipient #%d: %w", i+1, err)
		}
	}
	if strings.TrimSpace(c.Capture.AlbumName) == "" {
		return fmt.Errorf("capture album name must not be empty")
	}
	if c.Capture.MaxBytes < 0 || c.Capture.MaxDuration < 0 {
		return fmt.Errorf("capture limits must not be negative")
	}

	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:            getEnv("APP_NAME", "SOSApp"),
		Version:         getEnv("APP_VERSION", "1.0.0"),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnvAsInt("APP_PORT", 8080),
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		BaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:           getEnvAsBool("APP_DEBUG", true),
		ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "text"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
		Caller: getEnvAsBool("LOG_CALLER", false),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
