package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"weather-bot/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WeatherAPIProvider fetches hourly forecasts from weatherapi.com
type WeatherAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherAPIProvider creates a new WeatherAPI provider
func NewWeatherAPIProvider(apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL points the provider at a different API root
func (p *WeatherAPIProvider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

// FetchForecast fetches today's hourly entries for the city's coordinates
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city models.City) (models.ForecastData, error) {
	ctx, span := tracer.Start(ctx, "weatherapi.FetchForecast", trace.WithAttributes(
		attribute.String("city", city.Name),
	))
	defer span.End()

	forecast, err := p.fetchForecast(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return forecast, err
}

func (p *WeatherAPIProvider) fetchForecast(ctx context.Context, city models.City) (models.ForecastData, error) {
	endpoint := fmt.Sprintf("%s/forecast.json", p.baseURL)
	params := url.Values{}
	params.Add("q", fmt.Sprintf("%.6f,%.6f", city.Latitude, city.Longitude))
	params.Add("key", p.apiKey)
	params.Add("days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return models.ForecastData{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.ForecastData{}, fmt.Errorf("%w: failed to execute request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ForecastData{}, fmt.Errorf("%w: failed to read response body: %w", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		message := "Unknown error"
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return models.ForecastData{}, &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: message}
	}

	var response struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64   `json:"time_epoch"`
					TempC     float64 `json:"temp_c"`
					Humidity  int     `json:"humidity"`
					WindKph   float64 `json:"wind_kph"`
					Condition struct {
						Text string `json:"text"`
						Icon string `json:"icon"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return models.ForecastData{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	forecast := models.ForecastData{
		Provider:  p.Name(),
		Location:  city.Name,
		Forecasts: []models.Forecast{},
		Updated:   time.Now(),
	}

	for _, day := range response.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			if hour.TimeEpoch == 0 || hour.Condition.Text == "" {
				return models.ForecastData{}, fmt.Errorf("%w: hourly entry without time or condition", ErrMalformedResponse)
			}
			forecast.Forecasts = append(forecast.Forecasts, models.Forecast{
				Temperature: hour.TempC,
				Humidity:    float64(hour.Humidity),
				WindSpeed:   hour.WindKph / 3.6, // Convert to m/s
				Description: hour.Condition.Text,
				Icon:        hour.Condition.Icon,
				Timestamp:   time.Unix(hour.TimeEpoch, 0),
			})
		}
	}

	return forecast, nil
}

var _ ForecastSource = (*WeatherAPIProvider)(nil)
