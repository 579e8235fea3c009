package session

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 264

// qrDataURL renders a pairing token as a PNG data URL that observer UIs can
// drop straight into an <img> tag.
func qrDataURL(token string) (string, error) {
	png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("encoding qr token: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
