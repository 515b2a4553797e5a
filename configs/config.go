package configs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "p2h-development-secret"

// AppConfig holds every runtime setting of the service.
type AppConfig struct {
	Env      string
	Port     string
	Timezone string

	DB   DatabaseConfig
	JWT  JWTConfig
	MQTT MQTTConfig

	Admin AdminSeedConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the libpq style connection string used by gorm's postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// MQTTConfig is optional; an empty BrokerURL disables event publishing.
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

func (m MQTTConfig) Enabled() bool { return m.BrokerURL != "" }

// AdminSeedConfig is consumed by the seeder that creates the first admin account.
type AdminSeedConfig struct {
	Username string
	Password string
	Name     string
}

func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

// Location resolves the configured timezone; "today" is computed in it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads an optional .env file and then the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env could not be read: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "p2h")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_TTL", "12h")

	v.SetDefault("MQTT_BROKER_URL", "")
	v.SetDefault("MQTT_CLIENT_ID", "p2h-api")
	v.SetDefault("MQTT_USERNAME", "")
	v.SetDefault("MQTT_PASSWORD", "")
	v.SetDefault("MQTT_TOPIC_PREFIX", "p2h")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_NAME", "Administrator")
}

func fromViper(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Env:      strings.ToLower(v.GetString("APP_ENV")),
		Port:     v.GetString("APP_PORT"),
		Timezone: v.GetString("APP_TIMEZONE"),
		DB: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		MQTT: MQTTConfig{
			BrokerURL:   v.GetString("MQTT_BROKER_URL"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
		},
		Admin: AdminSeedConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
			Name:     v.GetString("ADMIN_NAME"),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be a positive duration")
	}
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is invalid: %w", c.Timezone, err)
	}
	return nil
}
