// Package openmeteo wraps the Open-Meteo forecast and geocoding APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

const (
	forecastBaseURL = "https://api.open-meteo.com/v1/forecast"

	requestTimeout = 10 * time.Second
)

type ForecastClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewForecastClient() *ForecastClient {
	return &ForecastClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    forecastBaseURL,
	}
}

type forecastResponse struct {
	Current struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		WeatherCode       []int     `json:"weather_code"`
		TemperatureMax    []float64 `json:"temperature_2m_max"`
		TemperatureMin    []float64 `json:"temperature_2m_min"`
		PrecipProbability []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast fetches today's weather for a coordinate in the given zone.
func (c *ForecastClient) Forecast(ctx context.Context, latitude, longitude float64, timezone string) (*entity.Weather, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("current", "temperature_2m,weather_code")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("timezone", timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request returned status %d", resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	// Prefer the current condition code, fall back to today's daily code.
	code := payload.Current.WeatherCode
	if code == nil && len(payload.Daily.WeatherCode) > 0 {
		code = &payload.Daily.WeatherCode[0]
	}

	return &entity.Weather{
		CurrentTemp:   payload.Current.Temperature,
		MaxTemp:       firstFloat(payload.Daily.TemperatureMax),
		MinTemp:       firstFloat(payload.Daily.TemperatureMin),
		PrecipProbMax: firstFloat(payload.Daily.PrecipProbability),
		Code:          code,
		Text:          CodeText(code),
	}, nil
}

func firstFloat(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
