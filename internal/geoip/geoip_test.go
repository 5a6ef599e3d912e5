// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/adrianomelo/lynx/internal/models"
)

// fakeProvider answers from a fixed map and counts calls.
type fakeProvider struct {
	name    string
	answers map[string]string
	err     error
	calls   atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Country(_ context.Context, ip net.IP) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if code, ok := f.answers[ip.String()]; ok {
		return code, nil
	}
	return "", ErrNoCountry
}

func TestParseRemoteAddr(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"8.8.8.8:53", "8.8.8.8"},
		{"8.8.8.8", "8.8.8.8"},
		{"[2001:4860:4860::8888]:443", "2001:4860:4860::8888"},
		{"2001:4860:4860::8888", "2001:4860:4860::8888"},
		{"[::1]", "::1"},
		{"fe80::1%eth0", "fe80::1"},
		{" 1.2.3.4 ", "1.2.3.4"},
		{"", ""},
		{"not-an-ip", ""},
		{"999.1.1.1:80", ""},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			ip := ParseRemoteAddr(tt.addr)
			got := ""
			if ip != nil {
				got = ip.String()
			}
			if got != tt.want {
				t.Errorf("ParseRemoteAddr(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"172.32.0.1", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPrivateIP(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestResolver_Country(t *testing.T) {
	provider := &fakeProvider{name: "fake", answers: map[string]string{"8.8.8.8": "us"}}
	r := NewResolver(0, 0, provider)
	ctx := context.Background()

	tests := []struct {
		addr string
		want string
	}{
		{"8.8.8.8:1234", "US"},
		{"1.1.1.1:1234", models.Unknown},
		{"127.0.0.1:1234", models.Unknown},
		{"192.168.0.10:80", models.Unknown},
		{"garbage", models.Unknown},
		{"", models.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := r.Country(ctx, tt.addr); got != tt.want {
				t.Errorf("Country(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestResolver_PrivateAddressSkipsProviders(t *testing.T) {
	provider := &fakeProvider{name: "fake"}
	r := NewResolver(10, time.Minute, provider)

	r.Country(context.Background(), "10.0.0.1:80")
	r.Country(context.Background(), "[::1]:80")

	if n := provider.calls.Load(); n != 0 {
		t.Errorf("provider called %d times for private addresses, want 0", n)
	}
}

func TestResolver_Fallback(t *testing.T) {
	failing := &fakeProvider{name: "down", err: errors.New("connection refused")}
	empty := &fakeProvider{name: "empty"}
	good := &fakeProvider{name: "good", answers: map[string]string{"8.8.8.8": "US"}}

	r := NewResolver(0, 0, failing, empty, good)
	if got := r.Country(context.Background(), "8.8.8.8"); got != "US" {
		t.Errorf("Country() = %q, want US from the third provider", got)
	}
	if failing.calls.Load() != 1 || empty.calls.Load() != 1 || good.calls.Load() != 1 {
		t.Error("each provider should be tried once in order")
	}
}

func TestResolver_RejectsMalformedCodes(t *testing.T) {
	bad := &fakeProvider{name: "bad", answers: map[string]string{"8.8.8.8": "USA"}}
	r := NewResolver(0, 0, bad)
	if got := r.Country(context.Background(), "8.8.8.8"); got != models.Unknown {
		t.Errorf("Country() = %q, want unknown for a three-letter answer", got)
	}
}

func TestResolver_NoProviders(t *testing.T) {
	r := NewResolver(10, time.Minute)
	if got := r.Country(context.Background(), "8.8.8.8:80"); got != models.Unknown {
		t.Errorf("Country() = %q, want unknown", got)
	}
}

func TestResolver_Cache(t *testing.T) {
	provider := &fakeProvider{name: "fake", answers: map[string]string{"8.8.8.8": "US"}}
	r := NewResolver(100, time.Hour, provider)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if got := r.Country(ctx, fmt.Sprintf("8.8.8.8:%d", 1000+i)); got != "US" {
			t.Fatalf("Country() = %q, want US", got)
		}
	}
	if n := provider.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1 (cached by IP, not port)", n)
	}

	// Definitive misses are cached too.
	r.Country(ctx, "1.1.1.1")
	r.Country(ctx, "1.1.1.1")
	if n := provider.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestResolver_TransientErrorsNotCached(t *testing.T) {
	provider := &fakeProvider{name: "flaky", err: errors.New("timeout")}
	r := NewResolver(100, time.Hour, provider)
	ctx := context.Background()

	r.Country(ctx, "8.8.8.8")
	r.Country(ctx, "8.8.8.8")
	if n := provider.calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

func TestResolver_MissThenTransientErrorNotCached(t *testing.T) {
	tests := []struct {
		name  string
		order func(db, api Provider) []Provider
	}{
		{"miss first", func(db, api Provider) []Provider { return []Provider{db, api} }},
		{"error first", func(db, api Provider) []Provider { return []Provider{api, db} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeProvider{name: "db"}
			api := &fakeProvider{name: "api", err: errors.New("timeout"), answers: map[string]string{"8.8.8.8": "US"}}
			r := NewResolver(100, time.Hour, tt.order(db, api)...)
			ctx := context.Background()

			if got := r.Country(ctx, "8.8.8.8"); got != models.Unknown {
				t.Fatalf("first Country() = %q, want unknown", got)
			}

			api.err = nil
			if got := r.Country(ctx, "8.8.8.8"); got != "US" {
				t.Errorf("second Country() = %q, want US once the provider recovers", got)
			}
			if n := api.calls.Load(); n != 2 {
				t.Errorf("api called %d times, want 2", n)
			}
		})
	}
}

func TestResolver_Providers(t *testing.T) {
	r := NewResolver(0, 0, &fakeProvider{name: "a"}, &fakeProvider{name: "b"})
	if got := strings.Join(r.Providers(), ","); got != "a,b" {
		t.Errorf("Providers() = %q, want a,b", got)
	}
}

func TestIPAPIProvider_Country(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "fields=") {
			t.Errorf("request should restrict fields: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/8.8.8.8":
			fmt.Fprint(w, `{"status":"success","countryCode":"US"}`)
		case "/1.1.1.1":
			fmt.Fprint(w, `{"status":"fail","message":"reserved range"}`)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	p := NewIPAPIProvider(server.URL+"/", 100, time.Second)
	ctx := context.Background()

	code, err := p.Country(ctx, net.ParseIP("8.8.8.8"))
	if err != nil || code != "US" {
		t.Errorf("Country(8.8.8.8) = (%q, %v), want (US, nil)", code, err)
	}

	_, err = p.Country(ctx, net.ParseIP("1.1.1.1"))
	if !errors.Is(err, ErrNoCountry) {
		t.Errorf("fail status should wrap ErrNoCountry, got %v", err)
	}

	_, err = p.Country(ctx, net.ParseIP("9.9.9.9"))
	if err == nil || errors.Is(err, ErrNoCountry) {
		t.Errorf("HTTP 429 should be a transient error, got %v", err)
	}
}

func TestIPAPIProvider_RateLimited(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"status":"success","countryCode":"DE"}`)
	}))
	defer server.Close()

	p := NewIPAPIProvider(server.URL, 2, time.Second)
	ctx := context.Background()
	ip := net.ParseIP("8.8.8.8")

	for i := 0; i < 2; i++ {
		if _, err := p.Country(ctx, ip); err != nil {
			t.Fatalf("lookup %d within budget failed: %v", i, err)
		}
	}
	if _, err := p.Country(ctx, ip); !errors.Is(err, ErrRateLimited) {
		t.Errorf("third lookup should be rate limited, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server saw %d requests, want 2", hits.Load())
	}
}

// fakeCountryReader stands in for a memory-mapped mmdb.
type fakeCountryReader struct {
	records map[string]*geoip2.Country
	closed  bool
}

func (f *fakeCountryReader) Country(ip net.IP) (*geoip2.Country, error) {
	if rec, ok := f.records[ip.String()]; ok {
		return rec, nil
	}
	return &geoip2.Country{}, nil
}

func (f *fakeCountryReader) Close() error {
	f.closed = true
	return nil
}

func TestMaxMindDBProvider_Country(t *testing.T) {
	us := &geoip2.Country{}
	us.Country.IsoCode = "US"
	anycast := &geoip2.Country{}
	anycast.RegisteredCountry.IsoCode = "AU"

	reader := &fakeCountryReader{records: map[string]*geoip2.Country{
		"8.8.8.8": us,
		"1.1.1.1": anycast,
	}}
	p := &MaxMindDBProvider{reader: reader}
	ctx := context.Background()

	if code, err := p.Country(ctx, net.ParseIP("8.8.8.8")); err != nil || code != "US" {
		t.Errorf("Country(8.8.8.8) = (%q, %v), want (US, nil)", code, err)
	}
	if code, err := p.Country(ctx, net.ParseIP("1.1.1.1")); err != nil || code != "AU" {
		t.Errorf("Country(1.1.1.1) = (%q, %v), want registered country AU", code, err)
	}
	if _, err := p.Country(ctx, net.ParseIP("9.9.9.9")); !errors.Is(err, ErrNoCountry) {
		t.Errorf("empty record should be ErrNoCountry, got %v", err)
	}

	if err := p.Close(); err != nil || !reader.closed {
		t.Error("Close() should close the reader")
	}
}

func TestOpenMaxMindDB_MissingFile(t *testing.T) {
	if _, err := OpenMaxMindDB("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Error("OpenMaxMindDB() should fail for a missing file")
	}
}
