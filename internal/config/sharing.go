package config

import (
	"time"

	"sosapp/internal/models"
)

type SharingConfig struct {
	// Recipients is the ordered list of phone numbers that receive updates.
	Recipients   []string           `yaml:"recipients"`
	Watch        models.WatchConfig `yaml:"watch"`
	MapsLinkBase string             `yaml:"maps_link_base"`
}

type LocationConfig struct {
	Provider   string `yaml:"provider"` // memory, redis
	Channel    string `yaml:"channel"`
	CurrentKey string `yaml:"current_key"`
}

func loadSharingConfig() *SharingConfig {
	return &SharingConfig{
		Recipients: getEnvAsSlice("SHARING_RECIPIENTS", []string{}),
		Watch: models.WatchConfig{
			Accuracy:    models.Accuracy(getEnv("SHARING_ACCURACY", string(models.AccuracyHigh))),
			MinInterval: getEnvAsDuration("SHARING_MIN_INTERVAL", 10*time.Second),
			MinDistance: getEnvAsFloat64("SHARING_MIN_DISTANCE_METERS", 20),
		},
		MapsLinkBase: getEnv("SHARING_MAPS_LINK_BASE", "https://www.google.com/maps?q="),
	}
}

func loadLocationConfig() *LocationConfig {
	return &LocationConfig{
		Provider:   getEnv("LOCATION_PROVIDER", "memory"),
		Channel:    getEnv("LOCATION_CHANNEL", "sosapp:location:updates"),
		CurrentKey: getEnv("LOCATION_CURRENT_KEY", "sosapp:location:current"),
	}
}
