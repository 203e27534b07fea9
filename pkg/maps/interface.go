package maps

import "context"

// Geocoder resolves coordinates into human readable addresses.
type Geocoder interface {
	Name() string
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BestAddress returns the first formatted address, or "" when nothing matched.
func (r *GeocodeResponse) BestAddress() string {
	if r == nil {
		return ""
	}
	for _, result := range r.Results {
		if result.Address != "" {
			return result.Address
		}
	}
	return ""
}
