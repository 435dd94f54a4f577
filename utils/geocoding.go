package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoGeocodingResult is returned when the label matched nothing.
var ErrNoGeocodingResult = errors.New("no geocoding result")

// GeocodingResult represents the result of a geocoding operation
type GeocodingResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Place     string  `json:"place"`
}

// Geocoder resolves free-text location labels through OpenStreetMap Nominatim.
type Geocoder struct {
	BaseURL     string
	CountryCode string
	Client      *http.Client
}

// NewGeocoder returns a Nominatim geocoder limited to countryCode (may be "").
func NewGeocoder(countryCode string) *Geocoder {
	return &Geocoder{
		BaseURL:     "https://nominatim.openstreetmap.org",
		CountryCode: countryCode,
		Client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Geocode converts a text label such as "Leeds, West Yorkshire" to coordinates.
func (g *Geocoder) Geocode(ctx context.Context, label string) (*GeocodingResult, error) {
	clean := strings.TrimSpace(label)
	if clean == "" {
		return nil, fmt.Errorf("location label cannot be empty")
	}

	q := url.Values{}
	q.Set("q", clean)
	q.Set("format", "json")
	q.Set("limit", "1")
	if g.CountryCode != "" {
		q.Set("countrycodes", g.CountryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tradie-match-server")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status: %d", resp.StatusCode)
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoGeocodingResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in response: %w", err)
	}

	return &GeocodingResult{
		Latitude:  lat,
		Longitude: lon,
		Place:     FirstLocationPart(results[0].DisplayName),
	}, nil
}

// FirstLocationPart returns the text before the first comma, or "" if none.
func FirstLocationPart(label string) string {
	parts := strings.Split(label, ",")
	return strings.TrimSpace(parts[0])
}
