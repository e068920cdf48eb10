package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-bot/models"
)

var dili = models.City{Name: "Dili", Latitude: -8.556856, Longitude: 125.598753}

func newOWMServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "-8.556856" || q.Get("lon") != "125.598753" {
			t.Errorf("unexpected coordinates lat=%s lon=%s", q.Get("lat"), q.Get("lon"))
		}
		if q.Get("appid") != "test-key" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenWeatherMapFetchForecast(t *testing.T) {
	server := newOWMServer(t, http.StatusOK, `{
		"cod": "200",
		"message": 0,
		"cnt": 2,
		"list": [
			{
				"dt": 1791936000,
				"main": {"temp": 27.5, "feels_like": 30.9, "temp_min": 27.5, "temp_max": 28.1,
					"pressure": 1010, "sea_level": 1010, "grnd_level": 1006, "humidity": 80, "temp_kf": -0.6},
				"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01n"}],
				"clouds": {"all": 4},
				"wind": {"speed": 2.1, "deg": 140, "gust": 2.6},
				"visibility": 10000,
				"pop": 0,
				"sys": {"pod": "n"},
				"dt_txt": "2026-10-14 00:00:00"
			},
			{
				"dt": 1791946800,
				"main": {"temp": 26.1, "feels_like": 26.1, "temp_min": 26.1, "temp_max": 26.1,
					"pressure": 1011, "sea_level": 1011, "grnd_level": 1007, "humidity": 83, "temp_kf": 0},
				"weather": [{"id": 801, "main": "Clouds", "description": "few clouds", "icon": "02n"}],
				"clouds": {"all": 15},
				"wind": {"speed": 1.4, "deg": 120, "gust": 1.9},
				"visibility": 10000,
				"pop": 0.12,
				"rain": {"3h": 0.11},
				"sys": {"pod": "n"},
				"dt_txt": "2026-10-14 03:00:00"
			}
		],
		"city": {
			"id": 1645457,
			"name": "Dili",
			"coord": {"lat": -8.5569, "lon": 125.5988},
			"country": "TL",
			"population": 150000,
			"timezone": 32400,
			"sunrise": 1791928931,
			"sunset": 1791973338
		}
	}`)

	p := NewOpenWeatherMapProvider("test-key")
	p.SetBaseURL(server.URL)

	data, err := p.FetchForecast(context.Background(), dili)
	if err != nil {
		t.Fatalf("FetchForecast() error = %v", err)
	}
	if data.Provider != "OpenWeatherMap" || data.Location != "Dili" {
		t.Errorf("unexpected header %+v", data)
	}
	if len(data.Forecasts) != 2 {
		t.Fatalf("got %d forecasts, want 2", len(data.Forecasts))
	}
	first := data.Forecasts[0]
	if !first.Timestamp.Equal(time.Unix(1791936000, 0)) {
		t.Errorf("timestamp = %v", first.Timestamp)
	}
	if first.Description != "clear sky" || first.Temperature != 27.5 || first.Humidity != 80 {
		t.Errorf("unexpected first entry %+v", first)
	}
	if data.Forecasts[1].Description != "few clouds" {
		t.Errorf("entries out of order: %+v", data.Forecasts)
	}
}

func TestOpenWeatherMapAPIError(t *testing.T) {
	server := newOWMServer(t, http.StatusUnauthorized, `{"cod": 401, "message": "Invalid API key."}`)

	p := NewOpenWeatherMapProvider("test-key")
	p.SetBaseURL(server.URL)

	_, err := p.FetchForecast(context.Background(), dili)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid API key." {
		t.Errorf("unexpected API error %+v", apiErr)
	}
}

func TestOpenWeatherMapAPIErrorWithoutMessage(t *testing.T) {
	server := newOWMServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	p := NewOpenWeatherMapProvider("test-key")
	p.SetBaseURL(server.URL)

	_, err := p.FetchForecast(context.Background(), dili)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Unknown error" {
		t.Fatalf("error = %v, want API error with unknown message", err)
	}
}

func TestOpenWeatherMapMalformed(t *testing.T) {
	tests := map[string]string{
		"missing weather":   `{"list": [{"dt": 1791936000, "main": {"temp": 27.5}, "weather": []}]}`,
		"missing timestamp": `{"list": [{"main": {"temp": 27.5}, "weather": [{"description": "rain"}]}]}`,
		"not json":          `{"list": [`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server := newOWMServer(t, http.StatusOK, body)
			p := NewOpenWeatherMapProvider("test-key")
			p.SetBaseURL(server.URL)

			_, err := p.FetchForecast(context.Background(), dili)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestOpenWeatherMapEmptyList(t *testing.T) {
	server := newOWMServer(t, http.StatusOK, `{"list": []}`)
	p := NewOpenWeatherMapProvider("test-key")
	p.SetBaseURL(server.URL)

	data, err := p.FetchForecast(context.Background(), dili)
	if err != nil {
		t.Fatalf("FetchForecast() error = %v", err)
	}
	if len(data.Forecasts) != 0 {
		t.Errorf("got %d forecasts, want none", len(data.Forecasts))
	}
}

func TestOpenWeatherMapTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	p := NewOpenWeatherMapProvider("test-key")
	p.SetBaseURL(server.URL)

	_, err := p.FetchForecast(context.Background(), dili)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}
