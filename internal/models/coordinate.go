package models

import "time"

type Accuracy string

const (
	AccuracyLow      Accuracy = "low"
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)

// Coordinate is a single position fix reported by the device.
type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

func (c Coordinate) IsValid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// WatchConfig controls how often a position subscription emits.
// An update is emitted only when both MinInterval and MinDistance are satisfied.
type WatchConfig struct {
	Accuracy    Accuracy      `json:"accuracy" yaml:"accuracy"`
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
	MinDistance float64       `json:"min_distance_meters" yaml:"min_distance_meters"`
}
