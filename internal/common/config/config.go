package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Auth     AuthConfig     `json:"auth"`
	Storage  StorageConfig  `json:"storage"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Name     string `json:"name"`      // service name (also used for Consul / tracing)
	Host     string `json:"host"`      // bind address
	HTTPPort int    `json:"http_port"` // HTTP port
}

// DatabaseConfig MySQL settings.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// DSN builds the MySQL DSN from the database settings.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// ConsulConfig Consul agent settings.
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig tracing settings.
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

// AuthConfig JWT settings.
type AuthConfig struct {
	Enabled       bool     `json:"enabled"`
	JWTSecret     string   `json:"jwt_secret"`
	Issuer        string   `json:"issuer"`
	Audience      string   `json:"audience"`
	TokenTTLHours int      `json:"token_ttl_hours"`
	PublicPaths   []string `json:"public_paths"` // exact request paths that skip auth
}

// StorageConfig image store settings.
type StorageConfig struct {
	Dir         string `json:"dir"`           // local upload directory
	BaseURL     string `json:"base_url"`      // public base URL for delivery links
	MaxUploadMB int64  `json:"max_upload_mb"` // per-file upload cap
}

// LogConfig logging settings.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // log file path
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads the JSON config file. A missing file falls back to the
// development defaults.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "rental-api",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "carnest",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:       true,
			JWTSecret:     "dev-secret-change-me",
			Issuer:        "carnest",
			Audience:      "carnest",
			TokenTTLHours: 24,
			PublicPaths: []string{
				"/healthz",
				"/images/",
				"/api/user/register",
				"/api/user/login",
				"/api/user/cars",
				"/api/bookings/check-availability",
			},
		},
		Storage: StorageConfig{
			Dir:         "uploads",
			BaseURL:     "http://localhost:8080/images",
			MaxUploadMB: 8,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
