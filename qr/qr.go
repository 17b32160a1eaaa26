// Package qr renders card share links as QR code data URLs.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// DataURL encodes the public card URL as a PNG QR code and returns it as a
// base64 data URL, ready to embed straight into templates.
func DataURL(baseURL, cardPublicID string) (string, error) {
	fullURL := fmt.Sprintf("%s/cards/%s", strings.TrimRight(baseURL, "/"), cardPublicID)

	png, err := qrcode.Encode(fullURL, qrcode.Medium, pngSize)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
