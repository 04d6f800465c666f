package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

const geocodeBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

type GeocodeClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewGeocodeClient() *GeocodeClient {
	return &GeocodeClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    geocodeBaseURL,
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode resolves a free-text place name to its best match. Returns nil
// without error when nothing matches.
func (c *GeocodeClient) Geocode(ctx context.Context, query string) (*entity.GeoResult, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(payload.Results) == 0 {
		return nil, nil
	}

	item := payload.Results[0]
	return &entity.GeoResult{
		Name:      displayName(item.Name, item.Admin1, item.Country),
		Latitude:  item.Latitude,
		Longitude: item.Longitude,
	}, nil
}

// displayName joins name, region and country, skipping blanks and repeats.
func displayName(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		dup := false
		for _, k := range kept {
			if k == part {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "Unknown location"
	}
	return strings.Join(kept, " / ")
}
