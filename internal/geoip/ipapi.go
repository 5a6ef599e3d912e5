// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package geoip

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// IPAPIProvider queries the free ip-api.com JSON endpoint.
// The free tier allows 45 requests per minute; the limiter rejects lookups
// locally once the budget is spent instead of getting the server banned.
type IPAPIProvider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// ipAPIResponse is the subset of the ip-api.com response we request.
type ipAPIResponse struct {
	Status      string `json:"status"`  // "success" or "fail"
	Message     string `json:"message"` // reason when status is "fail"
	CountryCode string `json:"countryCode"`
}

// NewIPAPIProvider creates a provider for baseURL (normally
// "http://ip-api.com/json") allowing perMinute lookups per minute.
func NewIPAPIProvider(baseURL string, perMinute int, timeout time.Duration) *IPAPIProvider {
	if perMinute <= 0 {
		perMinute = 45
	}
	return &IPAPIProvider{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider name.
func (p *IPAPIProvider) Name() string {
	return "ip-api.com"
}

// Country queries ip-api.com for ip.
func (p *IPAPIProvider) Country(ctx context.Context, ip net.IP) (string, error) {
	if !p.limiter.Allow() {
		return "", ErrRateLimited
	}

	url := fmt.Sprintf("%s/%s?fields=status,message,countryCode", p.baseURL, ip.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}

	if result.Status != "success" {
		// "private range", "reserved range" and "invalid query" are definitive.
		return "", fmt.Errorf("%w: %s", ErrNoCountry, result.Message)
	}
	if result.CountryCode == "" {
		return "", ErrNoCountry
	}
	return result.CountryCode, nil
}
