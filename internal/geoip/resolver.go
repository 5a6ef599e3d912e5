// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package geoip

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/adrianomelo/lynx/internal/cache"
	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/metrics"
	"github.com/adrianomelo/lynx/internal/models"
)

// Lookup result labels for metrics.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Resolver turns a remote address into a country code, trying providers in
// order. It never fails: anything it cannot resolve becomes models.Unknown.
type Resolver struct {
	providers []Provider
	cache     *cache.LRU[string]
	log       zerolog.Logger
}

// NewResolver creates a resolver. cacheSize <= 0 disables caching.
func NewResolver(cacheSize int, cacheTTL time.Duration, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: providers,
		log:       logging.WithComponent("geoip"),
	}
	if cacheSize > 0 {
		r.cache = cache.NewLRU[string](cacheSize, cacheTTL)
	}
	return r
}

// Providers returns the configured provider names in lookup order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Country resolves remoteAddr. Malformed, private and loopback addresses,
// provider failures and empty answers all yield models.Unknown.
func (r *Resolver) Country(ctx context.Context, remoteAddr string) string {
	ip := ParseRemoteAddr(remoteAddr)
	if ip == nil {
		return models.Unknown
	}
	if IsPrivateIP(ip) {
		return models.Unknown
	}

	key := ip.String()
	if r.cache != nil {
		country, ok := r.cache.Get(key)
		metrics.RecordGeoIPCache(ok)
		if ok {
			return country
		}
	}

	country, definitive := r.lookup(ctx, key, ip)

	// A miss is cached only when no provider failed transiently (timeout,
	// rate limit); otherwise the next request retries the whole chain.
	if r.cache != nil && definitive {
		r.cache.Add(key, country)
	}
	return country
}

// lookup walks the providers in order. The bool reports whether a miss may
// be cached: only when every provider answered and none errored.
func (r *Resolver) lookup(ctx context.Context, key string, ip net.IP) (string, bool) {
	missed, transient := false, false
	for _, p := range r.providers {
		code, err := p.Country(ctx, ip)
		if err != nil {
			if errors.Is(err, ErrNoCountry) {
				metrics.RecordGeoIPLookup(p.Name(), resultMiss)
				missed = true
				continue
			}
			metrics.RecordGeoIPLookup(p.Name(), resultError)
			r.log.Debug().Err(err).Str("provider", p.Name()).Str("ip", key).Msg("geoip lookup failed")
			transient = true
			continue
		}

		normalized, ok := normalizeCountryCode(code)
		if !ok {
			metrics.RecordGeoIPLookup(p.Name(), resultMiss)
			missed = true
			continue
		}
		metrics.RecordGeoIPLookup(p.Name(), resultHit)
		return normalized, true
	}
	return models.Unknown, missed && !transient
}
