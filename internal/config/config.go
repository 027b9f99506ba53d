package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full server configuration, loaded from config.yaml
// with environment-variable overrides (HOSTEL_SERVER_PORT and so on).
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Rooms    RoomsConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RoomsConfig describes the hostel's room numbering: rooms named
// Prefix+N for N in [First, Last].
type RoomsConfig struct {
	Prefix string
	First  int
	Last   int
}

// All expands the configured range into the full room list.
func (r RoomsConfig) All() []string {
	rooms := make([]string, 0, r.Last-r.First+1)
	for i := r.First; i <= r.Last; i++ {
		rooms = append(rooms, fmt.Sprintf("%s%d", r.Prefix, i))
	}
	return rooms
}

// Load reads config.yaml from the working directory and applies
// defaults and env overrides. Missing file is not fatal; env and
// defaults still apply.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "hostel")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("rooms.prefix", "R")
	v.SetDefault("rooms.first", 401)
	v.SetDefault("rooms.last", 450)

	v.SetEnvPrefix("HOSTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("No config file found, using defaults and environment: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
			MaxConns: v.GetInt("database.max_conns"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("jwt.secret"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		Rooms: RoomsConfig{
			Prefix: v.GetString("rooms.prefix"),
			First:  v.GetInt("rooms.first"),
			Last:   v.GetInt("rooms.last"),
		},
	}
}

// DSN renders the Postgres connection string for pgxpool.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.Database.User, c.Database.Password,
		c.Database.Host, c.Database.Port, c.Database.Name,
		c.Database.SSLMode, c.Database.MaxConns,
	)
}
