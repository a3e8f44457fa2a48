/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package config loads the deployment configuration through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabasesConfig `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Backend   BackendConfig   `mapstructure:"backend"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Bulk      BulkConfig      `mapstructure:"bulk"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Booking DatabaseConfig `mapstructure:"booking"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds the redis connection used by the redis OTP store
type RedisConfig struct {
	Address     string        `mapstructure:"address"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// MessagingConfig holds the RabbitMQ connection used for out-of-band OTP delivery
type MessagingConfig struct {
	URL      string `mapstructure:"url"`
	OTPQueue string `mapstructure:"otp_queue"`
}

// BackendConfig holds the booking backend REST client configuration
type BackendConfig struct {
	BaseURL                string           `mapstructure:"base_url"`
	Timeout                time.Duration    `mapstructure:"timeout"`
	OverrideSuccessMessage string           `mapstructure:"override_success_message"`
	Endpoints              BackendEndpoints `mapstructure:"endpoints"`
}

// BackendEndpoints holds the backend endpoint paths. {bookingNumber} is substituted per call.
type BackendEndpoints struct {
	CreateBooking         string `mapstructure:"create_booking"`
	ListBookings          string `mapstructure:"list_bookings"`
	RequestConsentOTP     string `mapstructure:"request_consent_otp"`
	VerifyConsentOTP      string `mapstructure:"verify_consent_otp"`
	RequestOverrideOTP    string `mapstructure:"request_override_otp"`
	VerifyOverrideOTP     string `mapstructure:"verify_override_otp"`
	RequestFulfillmentOTP string `mapstructure:"request_fulfillment_otp"`
	VerifyFulfillmentOTP  string `mapstructure:"verify_fulfillment_otp"`
	ApproveBooking        string `mapstructure:"approve_booking"`
	RejectBooking         string `mapstructure:"reject_booking"`
}

// OTP store backends
const (
	OTPStoreDatabase = "database"
	OTPStoreRedis    = "redis"
	OTPStoreMemory   = "memory"
)

// OTP providers
const (
	OTPProviderLocal  = "local"
	OTPProviderRemote = "remote"
)

// OTP delivery modes
const (
	OTPDeliveryEcho  = "echo"
	OTPDeliveryQueue = "queue"
)

// OTPConfig holds OTP gate configuration
type OTPConfig struct {
	Provider  string        `mapstructure:"provider"`
	Store     string        `mapstructure:"store"`
	HashCost  int           `mapstructure:"hash_cost"`
	TTL       time.Duration `mapstructure:"ttl"`
	Delivery  OTPDelivery   `mapstructure:"delivery"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// OTPDelivery controls how an issued code reaches the authorizing party
type OTPDelivery struct {
	Mode string `mapstructure:"mode"`
}

// BulkConfig holds bulk coordinator configuration
type BulkConfig struct {
	// RatePerSecond paces sequential backend calls. Zero disables pacing.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// WorkflowConfig holds lifecycle session configuration
type WorkflowConfig struct {
	AuditEnabled bool `mapstructure:"audit_enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("BOOKING_WF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 9446)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("database.booking.type", "mysql")
	v.SetDefault("database.booking.max_open_conns", 25)
	v.SetDefault("database.booking.max_idle_conns", 5)
	v.SetDefault("database.booking.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("messaging.otp_queue", "booking.otp.delivery")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.override_success_message", "Override OTP verified successfully")
	v.SetDefault("otp.provider", OTPProviderLocal)
	v.SetDefault("otp.store", OTPStoreMemory)
	v.SetDefault("otp.hash_cost", 10)
	v.SetDefault("otp.delivery.mode", OTPDeliveryEcho)
	v.SetDefault("otp.key_prefix", "otp")
	v.SetDefault("bulk.burst", 1)
	v.SetDefault("workflow.audit_enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	usesDatabase := config.Database.Booking.Enabled || config.OTP.Store == OTPStoreDatabase
	if usesDatabase {
		if config.Database.Booking.Hostname == "" {
			return fmt.Errorf("database hostname is required")
		}
		if config.Database.Booking.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	switch config.OTP.Store {
	case OTPStoreDatabase, OTPStoreRedis, OTPStoreMemory:
	default:
		return fmt.Errorf("unsupported otp store: %q", config.OTP.Store)
	}
	if config.OTP.Store == OTPStoreRedis && config.Redis.Address == "" {
		return fmt.Errorf("redis address is required when otp store is redis")
	}

	switch config.OTP.Provider {
	case OTPProviderLocal:
	case OTPProviderRemote:
		if config.Backend.BaseURL == "" {
			return fmt.Errorf("backend base URL is required when otp provider is remote")
		}
	default:
		return fmt.Errorf("unsupported otp provider: %q", config.OTP.Provider)
	}

	switch config.OTP.Delivery.Mode {
	case OTPDeliveryEcho:
	case OTPDeliveryQueue:
		if config.Messaging.URL == "" {
			return fmt.Errorf("messaging URL is required when otp delivery mode is queue")
		}
	default:
		return fmt.Errorf("unsupported otp delivery mode: %q", config.OTP.Delivery.Mode)
	}

	if config.Bulk.RatePerSecond < 0 {
		return fmt.Errorf("bulk rate_per_second must not be negative")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// GetEndpointURL returns the full URL of a backend endpoint with the booking number substituted
func (b *BackendConfig) GetEndpointURL(endpoint, bookingNumber string) string {
	return strings.TrimRight(b.BaseURL, "/") + strings.ReplaceAll(endpoint, "{bookingNumber}", bookingNumber)
}

// IsQueueDelivery reports whether issued codes are delivered out-of-band
func (o *OTPConfig) IsQueueDelivery() bool {
	return o.Delivery.Mode == OTPDeliveryQueue
}

// IsRemote reports whether OTP issuance is delegated to the backend
func (o *OTPConfig) IsRemote() bool {
	return o.Provider == OTPProviderRemote
}
