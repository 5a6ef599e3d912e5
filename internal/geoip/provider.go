// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package geoip

import (
	"context"
	"errors"
	"net"
	"strings"
)

var (
	// ErrNoCountry means the provider answered but has no country for the address.
	ErrNoCountry = errors.New("geoip: no country for address")
	// ErrRateLimited means the provider refused the lookup locally to stay under its quota.
	ErrRateLimited = errors.New("geoip: provider rate limit exceeded")
)

// Provider resolves an IP address to an ISO 3166-1 alpha-2 country code.
type Provider interface {
	// Country returns the two-letter country code for ip.
	Country(ctx context.Context, ip net.IP) (string, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// IsPrivateIP reports whether ip cannot be geolocated: private, loopback,
// link-local, multicast or unspecified.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}

// ParseRemoteAddr extracts the IP from a remote address as found in
// http.Request.RemoteAddr or X-Forwarded-For: "1.2.3.4:5678", "[::1]:80",
// "1.2.3.4" or "::1". It returns nil when no IP can be parsed.
func ParseRemoteAddr(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	// Zone identifiers ("fe80::1%eth0") are not part of the address.
	if idx := strings.IndexByte(addr, '%'); idx >= 0 {
		addr = addr[:idx]
	}
	return net.ParseIP(addr)
}

// normalizeCountryCode upper-cases a provider answer and rejects anything
// that is not two letters.
func normalizeCountryCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return "", false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return code, true
}
