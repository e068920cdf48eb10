// Package report renders the daily forecast text sent to chats.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"weather-bot/models"
)

const dateLayout = "2006-01-02"

// NoData returns the message sent when a city has no forecast entries at all
func NoData(cityName string) string {
	return fmt.Sprintf("Sorry, no hourly forecast data available for %s.", cityName)
}

// Build collects the leading run of entries falling on today's calendar date,
// evaluated in today's location. Entries are expected in ascending time order:
// consumption stops at the first entry dated any other day, so anything after
// it is dropped even if it is dated today.
func Build(cityName string, entries []models.Forecast, today time.Time) models.DailyReport {
	loc := today.Location()
	report := models.DailyReport{
		City:  cityName,
		Date:  today,
		Hours: []models.HourlyLine{},
	}

	for _, entry := range entries {
		t := entry.Timestamp.In(loc)
		if !sameDate(t, today) {
			break
		}
		report.Hours = append(report.Hours, models.HourlyLine{
			Time:        t.Format("15:04"),
			Description: Capitalize(entry.Description),
		})
	}

	return report
}

// Format renders the daily report for a city, or the no-data message when
// the feed returned no entries.
func Format(cityName string, entries []models.Forecast, today time.Time) string {
	if len(entries) == 0 {
		return NoData(cityName)
	}
	return String(Build(cityName, entries, today))
}

// String renders a daily report as chat text
func String(r models.DailyReport) string {
	lines := make([]string, 0, len(r.Hours))
	for _, h := range r.Hours {
		lines = append(lines, fmt.Sprintf("- %s - %s", h.Time, h.Description))
	}

	return fmt.Sprintf("Weather forecast for %s on %s:\nHours:\n%s",
		r.City, r.Date.Format(dateLayout), strings.Join(lines, "\n"))
}

// Capitalize upper-cases the first character and leaves the rest untouched
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
