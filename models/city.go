package models

import "fmt"

// City is a statically configured forecast location
type City struct {
	Name      string  `yaml:"name" json:"name"`
	Latitude  float64 `yaml:"lat" json:"lat"`
	Longitude float64 `yaml:"lon" json:"lon"`
}

// Key identifies the city by its coordinates
func (c City) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// DefaultCities is the city list used when no configuration overrides it
func DefaultCities() []City {
	return []City{
		{Name: "Dili", Latitude: -8.556856, Longitude: 125.598753},
		{Name: "Denpasar", Latitude: -8.650000, Longitude: 115.216667},
		{Name: "Bintaro", Latitude: -6.276806, Longitude: 106.718361},
	}
}
