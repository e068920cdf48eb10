// Package dispatch fetches, formats and delivers the daily reports for every
// configured city. The same entry point serves user commands and the daily timer.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weather-bot/datasource"
	"weather-bot/models"
	"weather-bot/report"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("weather-bot/dispatch")

// Sender delivers a text message to a chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Result summarizes one SendForecasts run
type Result struct {
	RunID  string
	Sent   int
	Failed int
}

// Dispatcher runs the per-city fetch, format and send loop
type Dispatcher struct {
	source   datasource.ForecastSource
	cities   []models.City
	sender   Sender
	location *time.Location
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher over a fixed city list.
// Report dates are evaluated in loc.
func NewDispatcher(source datasource.ForecastSource, cities []models.City, sender Sender, loc *time.Location, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		source:   source,
		cities:   cities,
		sender:   sender,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Cities returns the configured city list
func (d *Dispatcher) Cities() []models.City {
	return d.cities
}

// City looks a configured city up by name, case-insensitively
func (d *Dispatcher) City(name string) (models.City, bool) {
	for _, city := range d.cities {
		if strings.EqualFold(city.Name, name) {
			return city, true
		}
	}
	return models.City{}, false
}

// Report fetches the forecast for a city and renders today's report
func (d *Dispatcher) Report(ctx context.Context, city models.City) (string, error) {
	forecast, err := d.source.FetchForecast(ctx, city)
	if err != nil {
		return "", err
	}
	return report.Format(city.Name, forecast.Forecasts, d.now().In(d.location)), nil
}

// SendForecasts sends one report per configured city to the chat, one city at
// a time. A failing city is reported to the chat and the loop moves on.
func (d *Dispatcher) SendForecasts(ctx context.Context, chatID int64) Result {
	result := Result{RunID: uuid.NewString()}

	ctx, span := tracer.Start(ctx, "dispatch.SendForecasts", trace.WithAttributes(
		attribute.Int64("chat_id", chatID),
		attribute.String("run_id", result.RunID),
	))
	defer span.End()

	log := d.logger.With("run_id", result.RunID, "chat_id", chatID)
	log.Infow("sending forecasts", "cities", len(d.cities))

	for _, city := range d.cities {
		if err := d.sendCity(ctx, chatID, city); err != nil {
			result.Failed++
			log.Errorw("forecast failed", "city", city.Name, "error", err)

			if sendErr := d.sender.Send(ctx, chatID, FailureMessage(city.Name, err)); sendErr != nil {
				log.Errorw("failure notice not delivered", "city", city.Name, "error", sendErr)
			}
			continue
		}
		result.Sent++
	}

	span.SetAttributes(attribute.Int("sent", result.Sent), attribute.Int("failed", result.Failed))
	log.Infow("forecasts sent", "sent", result.Sent, "failed", result.Failed)
	return result
}

func (d *Dispatcher) sendCity(ctx context.Context, chatID int64, city models.City) error {
	ctx, span := tracer.Start(ctx, "dispatch.city", trace.WithAttributes(attribute.String("city", city.Name)))
	defer span.End()

	text, err := d.Report(ctx, city)
	if err == nil {
		err = d.sender.Send(ctx, chatID, text)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// FailureMessage is the chat text reported when a city cannot be delivered
func FailureMessage(cityName string, err error) string {
	return fmt.Sprintf("Failed to send forecast for %s — %v", cityName, err)
}
