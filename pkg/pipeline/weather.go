package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultWeatherBaseURL = "https://api.open-meteo.com"

// WeatherExecutor looks up the current weather at a coordinate via the
// Open-Meteo forecast API.
type WeatherExecutor struct {
	baseURL string
	client  *http.Client
}

var _ Executor = (*WeatherExecutor)(nil)

// NewWeatherExecutor creates the weather tool. A nil client gets a
// 10 second timeout default; an empty baseURL uses the public API.
func NewWeatherExecutor(baseURL string, client *http.Client) *WeatherExecutor {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherExecutor{baseURL: baseURL, client: client}
}

func (w *WeatherExecutor) Name() string { return "get_weather" }

func (w *WeatherExecutor) Description() string {
	return "Get the current weather at a location"
}

func (w *WeatherExecutor) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"latitude": {"type": "number"},
			"longitude": {"type": "number"}
		},
		"required": ["latitude", "longitude"]
	}`)
}

func (w *WeatherExecutor) Execute(ctx context.Context, args string) (string, error) {
	var params struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("parsing weather arguments: %w", err)
	}

	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%g&longitude=%g&current=temperature_2m&hourly=temperature_2m&daily=sunrise,sunset&timezone=auto",
		w.baseURL, params.Latitude, params.Longitude,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building weather request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading weather response: %w", err)
	}
	return string(body), nil
}
