package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Admin    AdminConfig    `yaml:"admin"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Booking  BookingConfig  `yaml:"booking"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Payment  PaymentConfig  `yaml:"payment"`
}

type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

// AdminConfig seeds the first entry of the admin credential store.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ScheduleConfig struct {
	NumFlights int `yaml:"num_flights"`
}

type BookingConfig struct {
	FlightsCacheTTLSeconds int `yaml:"flights_cache_ttl_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Enabled reports whether a booking audit database is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type PaymentConfig struct {
	RazorpayKeyID     string `yaml:"razorpay_key_id"`
	RazorpayKeySecret string `yaml:"razorpay_key_secret"`
}

// Enabled reports whether a real payment gateway is configured.
func (p PaymentConfig) Enabled() bool {
	return p.RazorpayKeyID != "" && p.RazorpayKeySecret != ""
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "root"
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = "root"
	}
	if cfg.Schedule.NumFlights <= 0 {
		cfg.Schedule.NumFlights = 15
	}

	return &cfg, nil
}
