// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// countryReader is the subset of *geoip2.Reader used here.
type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

// MaxMindDBProvider looks countries up in a local GeoLite2/GeoIP2 database
// (Country or City edition). Lookups are memory-mapped and need no network.
type MaxMindDBProvider struct {
	reader countryReader
	path   string
}

// OpenMaxMindDB opens the mmdb file at path.
func OpenMaxMindDB(path string) (*MaxMindDBProvider, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GeoIP database %s: %w", path, err)
	}
	return &MaxMindDBProvider{reader: reader, path: path}, nil
}

// Name returns the provider name.
func (p *MaxMindDBProvider) Name() string {
	return "maxmind-db"
}

// Country returns the registered country for ip.
func (p *MaxMindDBProvider) Country(_ context.Context, ip net.IP) (string, error) {
	record, err := p.reader.Country(ip)
	if err != nil {
		return "", fmt.Errorf("maxmind lookup %s: %w", ip, err)
	}
	code := record.Country.IsoCode
	if code == "" {
		// Anycast and some satellite ranges only carry a registered country.
		code = record.RegisteredCountry.IsoCode
	}
	if code == "" {
		return "", ErrNoCountry
	}
	return code, nil
}

// Close releases the database.
func (p *MaxMindDBProvider) Close() error {
	return p.reader.Close()
}
