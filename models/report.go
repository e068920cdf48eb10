package models

import "time"

// HourlyLine is one rendered row of a daily report
type HourlyLine struct {
	Time        string `json:"time"` // HH:MM, 24-hour
	Description string `json:"description"`
}

// DailyReport is the forecast of one city restricted to a single calendar date
type DailyReport struct {
	City  string       `json:"city"`
	Date  time.Time    `json:"date"`
	Hours []HourlyLine `json:"hours"`
}
