package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weather-bot/models"

	"github.com/briandowns/openweathermap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("weather-bot/datasource")

// OpenWeatherMapProvider fetches the 5 day / 3 hour forecast from OpenWeatherMap
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL points the provider at a different API root
func (p *OpenWeatherMapProvider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// FetchForecast fetches the forecast entries for the city's coordinates
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city models.City) (models.ForecastData, error) {
	ctx, span := tracer.Start(ctx, "openweathermap.FetchForecast", trace.WithAttributes(
		attribute.String("city", city.Name),
		attribute.Float64("lat", city.Latitude),
		attribute.Float64("lon", city.Longitude),
	))
	defer span.End()

	forecast, err := p.fetchForecast(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return forecast, err
}

func (p *OpenWeatherMapProvider) fetchForecast(ctx context.Context, city models.City) (models.ForecastData, error) {
	endpoint := fmt.Sprintf("%s/forecast", p.baseURL)
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(city.Latitude, 'f', 6, 64))
	params.Add("lon", strconv.FormatFloat(city.Longitude, 'f', 6, 64))
	params.Add("appid", p.apiKey)
	params.Add("units", "metric")

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
		// error bodies look like {"cod":"401","message":"Invalid API key..."}
		var apiErr struct {
			Message string `json:"message"`
		}
		message := "Unknown error"
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return models.ForecastData{}, &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: message}
	}

	var response openweathermap.Forecast5WeatherData
	if err := json.Unmarshal(body, &response); err != nil {
		return models.ForecastData{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	forecast := models.ForecastData{
		Provider:  p.Name(),
		Location:  city.Name,
		Forecasts: make([]models.Forecast, 0, len(response.List)),
		Updated:   time.Now(),
	}

	for i, item := range response.List {
		if item.Dt == 0 {
			return models.ForecastData{}, fmt.Errorf("%w: entry %d has no timestamp", ErrMalformedResponse, i)
		}
		if len(item.Weather) == 0 {
			return models.ForecastData{}, fmt.Errorf("%w: entry %d has no weather description", ErrMalformedResponse, i)
		}

		forecast.Forecasts = append(forecast.Forecasts, models.Forecast{
			Temperature: item.Main.Temp,
			Humidity:    float64(item.Main.Humidity),
			WindSpeed:   item.Wind.Speed,
			Description: item.Weather[0].Description,
			Icon:        item.Weather[0].Icon,
			Timestamp:   time.Unix(int64(item.Dt), 0),
		})
	}

	return forecast, nil
}

var _ ForecastSource = (*OpenWeatherMapProvider)(nil)
