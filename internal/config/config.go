package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	AI          AIConfig          `mapstructure:"ai"`
	Application ApplicationConfig `mapstructure:"application"`
}

type ApplicationConfig struct {
	Name          string        `mapstructure:"name"`
	Version       string        `mapstructure:"version"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	SessionSecret string        `mapstructure:"session_secret"`
	GuestLimit    int           `mapstructure:"guest_limit"`
	Storage       StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Uploads string `mapstructure:"uploads"`
	Static  string `mapstructure:"static"`
}

type AIConfig struct {
	Key        string `mapstructure:"key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
	VideoModel string `mapstructure:"video_model"`
	// Parallelism cap for per-slide image generation.
	ImageWorkers int `mapstructure:"image_workers"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Options  string `mapstructure:"options"`
}

func (c *DatabaseConfig) GetConnectStr() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, sslmode)

	if c.Options != "" {
		// Basic URL encoding for the options value: space -> %20
		encodedOptions := strings.ReplaceAll(c.Options, " ", "%20")
		connStr += fmt.Sprintf("&options=%s", encodedOptions)
	}

	return connStr
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found, using system environment variables")
	}

	viper.SetConfigFile("config.yaml") // Support optional config.yaml
	viper.AutomaticEnv()

	// Environment variable mappings
	mappings := []struct {
		key, env string
	}{
		{"database.url", "DB_URL"},
		{"database.host", "PG_HOST"},
		{"database.port", "PG_PORT"},
		{"database.user", "PG_USER"},
		{"database.password", "PG_PASSWORD"},
		{"database.dbname", "PG_DB"},
		{"database.sslmode", "PG_SSLMODE"},
		{"database.options", "PG_OPTIONS"},

		{"application.host", "HOST"},
		{"application.port", "PORT"},
		{"application.session_secret", "SESSION_SECRET"},
		{"application.guest_limit", "GUEST_LIMIT"},

		// Storage
		{"application.storage.uploads", "STORAGE_UPLOADS"},
		{"application.storage.static", "STORAGE_STATIC"},

		// AI models
		{"ai.key", "GEMINI_KEY"},
		{"ai.text_model", "GEMINI_TEXT_MODEL"},
		{"ai.image_model", "GEMINI_IMAGE_MODEL"},
		{"ai.video_model", "GEMINI_VIDEO_MODEL"},
		{"ai.image_workers", "AI_IMAGE_WORKERS"},
	}

	for _, m := range mappings {
		viper.BindEnv(m.key, m.env)
	}
	viper.BindEnv("ai.key", "GEMINI_API_KEY")

	// Defaults
	viper.SetDefault("application.name", "MotionPitch")
	viper.SetDefault("application.port", 8080)
	viper.SetDefault("application.guest_limit", 15)
	viper.SetDefault("application.storage.uploads", "uploads")
	viper.SetDefault("application.storage.static", "ui/static")
	viper.SetDefault("ai.text_model", "gemini-2.5-pro")
	viper.SetDefault("ai.image_model", "gemini-2.5-flash-image")
	viper.SetDefault("ai.video_model", "veo-3.1-generate-preview")
	viper.SetDefault("ai.image_workers", 5)

	if err := viper.ReadInConfig(); err != nil {
		// Ignore if config.yaml is missing
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.AI.Key == "" {
		return nil, fmt.Errorf("GEMINI_KEY not set")
	}

	return &cfg, nil
}
