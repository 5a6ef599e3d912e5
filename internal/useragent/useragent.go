// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package useragent classifies User-Agent header values into the field map
// stored with every tracking event.
package useragent

import (
	"strings"

	ua "github.com/mileusna/useragent"

	"github.com/adrianomelo/lynx/internal/models"
)

// Device categories.
const (
	CategoryCrawler    = "crawler"
	CategoryTablet     = "tablet"
	CategorySmartphone = "smartphone"
	CategoryPC         = "pc"
)

// Classifier turns raw User-Agent strings into models.UserAgent maps.
type Classifier struct{}

// NewClassifier creates a new Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses raw. Every key is always present; fields the parser cannot
// determine hold models.Unknown. An absent header must be passed as "".
func (c *Classifier) Classify(raw string) models.UserAgent {
	return Classify(raw)
}

// Classify is the package-level form of Classifier.Classify.
func Classify(raw string) models.UserAgent {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownAgent()
	}
	parsed := ua.Parse(raw)

	return models.UserAgent{
		models.UAName:      orUnknown(parsed.Name),
		models.UAVersion:   orUnknown(parsed.Version),
		models.UAOS:        orUnknown(parsed.OS),
		models.UAOSVersion: orUnknown(parsed.OSVersion),
		models.UACategory:  category(&parsed),
		models.UADevice:    orUnknown(parsed.Device),
	}
}

func unknownAgent() models.UserAgent {
	return models.UserAgent{
		models.UAName:      models.Unknown,
		models.UAVersion:   models.Unknown,
		models.UAOS:        models.Unknown,
		models.UAOSVersion: models.Unknown,
		models.UACategory:  models.Unknown,
		models.UADevice:    models.Unknown,
	}
}

// category checks bots first so crawlers with mobile tokens are not counted as phones.
func category(parsed *ua.UserAgent) string {
	switch {
	case parsed.Bot:
		return CategoryCrawler
	case parsed.Tablet:
		return CategoryTablet
	case parsed.Mobile:
		return CategorySmartphone
	case parsed.Desktop:
		return CategoryPC
	default:
		return models.Unknown
	}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return models.Unknown
	}
	return v
}
