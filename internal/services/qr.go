package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	QRSize      = 512
	QRQuietZone = 2
	qrRecovery  = qrcode.Medium
)

// CaptureURL is the guest-facing page for an event.
func CaptureURL(origin, eventID string) string {
	return strings.TrimRight(origin, "/") + "/event/" + eventID
}

// QRFileName is the download name of an event's QR code.
func QRFileName(eventID string) string {
	return "qrcode-event-" + eventID + ".png"
}

// RenderQR encodes the capture URL of an event as a QRSize×QRSize PNG with a
// QRQuietZone-module margin.
func RenderQR(origin, eventID string) ([]byte, error) {
	if eventID == "" {
		return nil, newError(KindInvalidRequest, "event id is required", nil)
	}

	q, err := qrcode.New(CaptureURL(origin, eventID), qrRecovery)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	// skip2 pads with a 4-module border; draw our own instead
	q.DisableBorder = true

	img, err := drawQR(q.Bitmap(), QRSize, QRQuietZone)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawQR scales the module grid to the largest integer module width that fits
// size with margin modules on every side, centring any leftover pixels.
func drawQR(bitmap [][]bool, size, margin int) (*image.Paletted, error) {
	n := len(bitmap)
	if n == 0 {
		return nil, errors.New("empty qr bitmap")
	}
	total := n + 2*margin
	scale := size / total
	if scale < 1 {
		return nil, fmt.Errorf("qr with %d modules does not fit %dpx", n, size)
	}
	offset := (size-total*scale)/2 + margin*scale

	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{color.White, color.Black})
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0, y0 := offset+x*scale, offset+y*scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetColorIndex(x0+dx, y0+dy, 1)
				}
			}
		}
	}
	return img, nil
}
