// Package qr renders PIX codes as QR images and reads them back.
//
// The PIX payload is plain text, so the QR symbol just carries the string
// produced by pix.Encode; Scan returns that string for pix.Decode.
package qr

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for Scan
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels used when size <= 0.
const DefaultSize = 256

var (
	// ErrEmptyCode is returned when asked to render an empty string.
	ErrEmptyCode = errors.New("qr: empty code")

	// ErrNoCode is returned when no QR symbol could be read from an image.
	ErrNoCode = errors.New("qr: no QR code found")
)

// Render encodes code as a square PNG of size x size pixels with medium
// error correction, which is what banking apps expect for PIX.
func Render(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: render: %w", err)
	}
	return png, nil
}

// Terminal renders code with half-block characters for display in a
// terminal.
func Terminal(code string) (string, error) {
	if code == "" {
		return "", ErrEmptyCode
	}
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qr: render: %w", err)
	}
	return q.ToSmallString(false), nil
}

// Scan decodes a PNG or JPEG image and returns the text of the QR code
// it contains.
func Scan(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("qr: decode image: %w", err)
	}
	return ScanImage(img)
}

// ScanImage returns the text of the QR code in img.
func ScanImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("qr: binarize: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCode, err)
	}
	return result.GetText(), nil
}
