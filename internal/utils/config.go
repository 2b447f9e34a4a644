package utils

import (
	"fmt"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// PortfolioConfig holds transaction ledger configuration
type PortfolioConfig struct {
	File     string `mapstructure:"file"`
	Category string `mapstructure:"category"`
}

// PricesConfig holds price feed configuration
type PricesConfig struct {
	SheetID string `mapstructure:"sheet_id"`
	Timeout int    `mapstructure:"timeout"`
}

// TelegramConfig holds bot delivery configuration
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// RenderConfig holds chart rendering configuration
type RenderConfig struct {
	Backend   string `mapstructure:"backend"` // "png", "html" or "screenshot"
	OutputDir string `mapstructure:"output_dir"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
}

// ScheduleConfig holds the scheduled analysis configuration
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// Config holds all configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Prices    PricesConfig    `mapstructure:"prices"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Render    RenderConfig    `mapstructure:"render"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("portfolio.file", "profolio.csv")
	viper.SetDefault("portfolio.category", "HK Stock")
	viper.SetDefault("prices.timeout", 30)
	viper.SetDefault("render.backend", "screenshot")
	viper.SetDefault("render.output_dir", "output")
	viper.SetDefault("render.width", 1920)
	viper.SetDefault("render.height", 1080)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
