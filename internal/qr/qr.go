// Package qr renders client QR codes for the scanner page.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered QR image size in pixels.
const DefaultSize = 300

// DataURL encodes the payload as a PNG QR code wrapped in a
// data:image/png;base64 URL, ready for an <img> tag.
func DataURL(payload string, size int) (string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
