package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecerdem/stokbot/internal/stock"
)

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(port int) *apiClient {
	return &apiClient{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) health() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("server not reachable — is stokbot running? (%w)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

type statsResult struct {
	Success bool `json:"success"`
	Data    struct {
		CriticalItems []stock.CriticalItem `json:"criticalItems"`
		OverallStats  stock.OverallStats   `json:"overallStats"`
	} `json:"data"`
}

func (c *apiClient) stats() (statsResult, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/stats")
	if err != nil {
		return statsResult{}, fmt.Errorf("server not reachable — is stokbot running? (%w)", err)
	}

	var result statsResult
	if err := decodeJSON(resp, &result); err != nil {
		return statsResult{}, err
	}
	return result, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("server returned %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
