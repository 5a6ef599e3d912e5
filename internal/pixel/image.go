// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package pixel

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// ContentTypeGIF is the content type of the built-in pixel.
const ContentTypeGIF = "image/gif"

// transparentGIF is a 1x1 transparent GIF89a.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0x02, 0x02, 0x44, 0x01, 0x00,
	0x3b,
}

// Image is the static payload returned for every valid pixel request.
type Image struct {
	Data        []byte
	ContentType string
}

// DefaultImage returns the built-in transparent 1x1 GIF.
func DefaultImage() Image {
	data := make([]byte, len(transparentGIF))
	copy(data, transparentGIF)
	return Image{Data: data, ContentType: ContentTypeGIF}
}

// LoadImage reads the pixel served to clients. An empty path selects DefaultImage.
// The content type comes from the file extension, falling back to sniffing.
func LoadImage(path string) (Image, error) {
	if path == "" {
		return DefaultImage(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Image{}, fmt.Errorf("read pixel image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("pixel image %s is empty", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return Image{Data: data, ContentType: contentType}, nil
}
