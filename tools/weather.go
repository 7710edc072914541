// Weather Tool backed by the Open-Meteo geocoding and forecast APIs.
//
// Information Hiding:
// - City-to-coordinate lookup hidden
// - Forecast request parameters hidden
// - WMO weather code translation hidden

package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	openMeteoGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherTool reports current conditions for a city. No API key needed.
type WeatherTool struct {
	BaseTool
	api         *apiClient
	geocodeURL  string
	forecastURL string
}

// NewWeatherTool creates a weather tool using the public Open-Meteo endpoints.
func NewWeatherTool(timeout time.Duration) *WeatherTool {
	return &WeatherTool{
		api:         newAPIClient(timeout),
		geocodeURL:  openMeteoGeocodeURL,
		forecastURL: openMeteoForecastURL,
	}
}

// WithBaseURLs points the tool at other endpoints (tests, mirrors).
func (t *WeatherTool) WithBaseURLs(geocodeURL, forecastURL string) *WeatherTool {
	t.geocodeURL = geocodeURL
	t.forecastURL = forecastURL
	return t
}

// Metadata returns the tool metadata.
func (t *WeatherTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "weather",
		Description: "Get the current weather (temperature, humidity, wind, conditions) for a city.",
		Usage:       "a city name, e.g. Berlin",
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// Execute looks up the city and fetches current conditions.
func (t *WeatherTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	city := strings.TrimSpace(input)
	if city == "" {
		return FailureResultf("city cannot be empty"), nil
	}

	var geo geocodeResponse
	err := t.api.getJSON(ctx, t.geocodeURL, url.Values{
		"name":     {city},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}, &geo)
	if err != nil {
		return FailureResult(fmt.Errorf("geocoding failed: %w", err)), nil
	}
	if len(geo.Results) == 0 {
		return FailureResultf("no location found for '%s'", city), nil
	}
	place := geo.Results[0]

	var fc forecastResponse
	err = t.api.getJSON(ctx, t.forecastURL, url.Values{
		"latitude":  {strconv.FormatFloat(place.Latitude, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(place.Longitude, 'f', 4, 64)},
		"current":   {"temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"},
		"timezone":  {"auto"},
	}, &fc)
	if err != nil {
		return FailureResult(fmt.Errorf("forecast failed: %w", err)), nil
	}

	label := place.Name
	if place.Country != "" {
		label += ", " + place.Country
	}
	c := fc.Current
	return SuccessResult(fmt.Sprintf(
		"Weather in %s: %s, %.1f°C, humidity %.0f%%, wind %.1f km/h (as of %s)",
		label, weatherCodeText(c.WeatherCode), c.Temperature, c.Humidity, c.WindSpeed, c.Time)), nil
}

// weatherCodeText maps WMO weather interpretation codes to words.
func weatherCodeText(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return fmt.Sprintf("weather code %d", code)
	}
}
