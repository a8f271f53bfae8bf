package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	AllowedOrigins  string `mapstructure:"allowedOrigins"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
}

// DatabaseConfig holds the Postgres connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds the session cache configuration
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds token signing and reCAPTCHA settings
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwtSecret"`
	TokenTTLMinutes int    `mapstructure:"tokenTTLMinutes"`
	RecaptchaSecret string `mapstructure:"recaptchaSecret"`
	RecaptchaURL    string `mapstructure:"recaptchaURL"`
}

// MonitorConfig holds the operator console configuration
type MonitorConfig struct {
	ServerURL           string `mapstructure:"serverURL"`
	PollIntervalSeconds int    `mapstructure:"pollIntervalSeconds"`
	ReconnectSeconds    int    `mapstructure:"reconnectSeconds"`
}

// LoadConfig loads the application configuration from file or environment variables
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// Set default values
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.allowedOrigins", "*")
	viper.SetDefault("server.shutdownTimeout", 10)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "star_alerts")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("auth.tokenTTLMinutes", 480)
	viper.SetDefault("auth.recaptchaURL", "https://www.google.com/recaptcha/api/siteverify")
	viper.SetDefault("monitor.serverURL", "http://localhost:3000")
	viper.SetDefault("monitor.pollIntervalSeconds", 5)
	viper.SetDefault("monitor.reconnectSeconds", 3)

	// Allow environment variables to override config file
	viper.SetEnvPrefix("STAR_ALERT")
	viper.AutomaticEnv()

	// If config file is provided, read it
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			logrus.Warnf("Error reading config file: %v", err)
		}
	}

	// Unmarshal config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
