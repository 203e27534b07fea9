package config

type MapsConfig struct {
	Provider   string            `yaml:"provider"` // google, none
	GoogleMaps *GoogleMapsConfig `yaml:"google_maps"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		Provider: getEnv("MAPS_PROVIDER", "none"),
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
	}
}
