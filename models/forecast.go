package models

import (
	"time"
)

// Forecast represents a single forecast slot (3 hours wide on OpenWeatherMap)
type Forecast struct {
	Temperature float64   `json:"temperature"` // in Celsius
	Humidity    float64   `json:"humidity"`    // percentage
	WindSpeed   float64   `json:"windSpeed"`   // in m/s
	Description string    `json:"description"` // short text description
	Icon        string    `json:"icon"`        // icon code or URL
	Timestamp   time.Time `json:"timestamp"`   // time this forecast is for
}

// ForecastData represents weather forecast data from a provider for one city
type ForecastData struct {
	Provider  string     `json:"provider"`  // weather data provider name
	Location  string     `json:"location"`  // city name
	Forecasts []Forecast `json:"forecasts"` // entries in feed order
	Updated   time.Time  `json:"updated"`   // when this forecast was fetched
}
