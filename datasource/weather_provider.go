package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without a zoneinfo database

	"weather-bot/models"

	"gopkg.in/yaml.v2"
)

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches the upcoming forecast entries for a city, in feed order
	FetchForecast(ctx context.Context, city models.City) (models.ForecastData, error)

	// Name returns the source's name
	Name() string
}

// Supported upstream providers
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderWeatherAPI     = "weatherapi"
)

// Environment variables holding secrets
const (
	EnvTelegramToken     = "TELEGRAM_BOT_TOKEN"
	EnvOpenWeatherMapKey = "OPENWEATHER_API_KEY"
	EnvWeatherAPIKey     = "WEATHERAPI_KEY"
	EnvZipkinURL         = "ZIPKIN_URL"
)

// Config represents the application configuration.
// Non-secret settings come from an optional YAML file, secrets only from the environment.
type Config struct {
	Env      string        `yaml:"env"`
	Provider string        `yaml:"provider"`
	SendTime string        `yaml:"send_time"` // HH:MM in Timezone
	Timezone string        `yaml:"timezone"`
	Cities   []models.City `yaml:"cities"`

	TelegramToken     string `yaml:"-"`
	OpenWeatherMapKey string `yaml:"-"`
	WeatherAPIKey     string `yaml:"-"`
	ZipkinURL         string `yaml:"-"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Env:      "prod",
		Provider: ProviderOpenWeatherMap,
		SendTime: "00:00",
		Timezone: "UTC",
		Cities:   models.DefaultCities(),
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// and the environment, and validates it.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// the file is optional; defaults apply
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.TelegramToken = strings.TrimSpace(os.Getenv(EnvTelegramToken))
	config.OpenWeatherMapKey = strings.TrimSpace(os.Getenv(EnvOpenWeatherMapKey))
	config.WeatherAPIKey = strings.TrimSpace(os.Getenv(EnvWeatherAPIKey))
	config.ZipkinURL = strings.TrimSpace(os.Getenv(EnvZipkinURL))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks secrets, provider selection, send time, timezone and cities
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvTelegramToken)
	}

	switch c.Provider {
	case ProviderOpenWeatherMap:
		if c.OpenWeatherMapKey == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvOpenWeatherMapKey)
		}
	case ProviderWeatherAPI:
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("%w: %s is not set", ErrMissingCredential, EnvWeatherAPIKey)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if _, _, err := ParseSendTime(c.SendTime); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if len(c.Cities) == 0 {
		return errors.New("no cities configured")
	}
	for _, city := range c.Cities {
		if city.Name == "" {
			return errors.New("city without a name in configuration")
		}
		if city.Latitude < -90 || city.Latitude > 90 || city.Longitude < -180 || city.Longitude > 180 {
			return fmt.Errorf("city %s has out of range coordinates", city.Name)
		}
	}
	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseSendTime parses a 24-hour "HH:MM" daily send time
func ParseSendTime(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid send time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid send time %q: bad hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid send time %q: bad minute", s)
	}
	return hour, minute, nil
}

// NewForecastSource creates the upstream provider selected by the configuration
func NewForecastSource(config *Config) (ForecastSource, error) {
	switch config.Provider {
	case ProviderOpenWeatherMap:
		return NewOpenWeatherMapProvider(config.OpenWeatherMapKey), nil
	case ProviderWeatherAPI:
		return NewWeatherAPIProvider(config.WeatherAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
