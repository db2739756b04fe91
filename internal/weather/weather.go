package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrCityNotFound  = errors.New("city not found")
	ErrNoWeatherData = errors.New("weather data not available")
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Report is the current weather at a place.
type Report struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"` // °C
	WindSpeed   float64 `json:"windspeed"`   // km/h
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

func (r Report) String() string {
	return fmt.Sprintf("%s, %s\nTemp: %s°C\nWind: %s km/h\nTime: %s",
		r.City, r.Country,
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.WindSpeed, 'f', -1, 64),
		r.Time)
}

// Client talks to the open-meteo geocoding and forecast APIs.
type Client struct {
	GeocodingURL string
	ForecastURL  string
	HTTP         *http.Client
}

func NewClient(geocodingURL, forecastURL string, timeout time.Duration) *Client {
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	return &Client{
		GeocodingURL: geocodingURL,
		ForecastURL:  forecastURL,
		HTTP:         &http.Client{Timeout: timeout},
	}
}

type geoResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
}

// Current geocodes city (optionally narrowed by an ISO country code) and
// returns the weather at the first match.
func (c *Client) Current(ctx context.Context, city, country string) (Report, error) {
	q := url.Values{"name": {city}}
	if country != "" {
		q.Set("country", country)
	}
	var geo geoResponse
	if err := c.getJSON(ctx, c.GeocodingURL, q, &geo); err != nil {
		return Report{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return Report{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	place := geo.Results[0]

	q = url.Values{
		"latitude":        {strconv.FormatFloat(place.Latitude, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(place.Longitude, 'f', -1, 64)},
		"current_weather": {"true"},
	}
	var fc forecastResponse
	if err := c.getJSON(ctx, c.ForecastURL, q, &fc); err != nil {
		return Report{}, fmt.Errorf("forecast for %s: %w", place.Name, err)
	}
	if fc.CurrentWeather == nil {
		return Report{}, ErrNoWeatherData
	}

	return Report{
		City:        place.Name,
		Country:     place.Country,
		Temperature: fc.CurrentWeather.Temperature,
		WindSpeed:   fc.CurrentWeather.WindSpeed,
		WeatherCode: fc.CurrentWeather.WeatherCode,
		Time:        fc.CurrentWeather.Time,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, base string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
