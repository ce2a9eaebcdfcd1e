// Package qr renders QR code images for album pages.
package qr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// MinSize is the smallest side, in pixels, of a generated code.
const MinSize = 64

// Level maps a recovery level name (low, medium, high, highest) to go-qrcode.
func Level(name string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "medium", "m":
		return qrcode.Medium, nil
	case "low", "l":
		return qrcode.Low, nil
	case "high", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	}
	return qrcode.Medium, fmt.Errorf("unknown qr recovery level %q", name)
}

// WriteFile encodes content as a PNG of side x side pixels at path,
// creating parent directories.
func WriteFile(content string, side int, level qrcode.RecoveryLevel, path string) error {
	if content == "" {
		return fmt.Errorf("qr: empty content")
	}
	if side < MinSize {
		side = MinSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := qrcode.WriteFile(content, level, side, path); err != nil {
		return fmt.Errorf("qr: encode %q: %w", content, err)
	}
	return nil
}
