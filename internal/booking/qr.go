package booking

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrNoPaymentLink is returned when the flow has no UPI link to render
var ErrNoPaymentLink = errors.New("no payment link to render")

// QRCode renders the UPI link as a PNG of size x size pixels
func (f *Flow) QRCode(size int) ([]byte, error) {
	link := f.Snapshot().UPILink
	if link == "" {
		return nil, ErrNoPaymentLink
	}
	return EncodeQR(link, size)
}

// QRText renders the UPI link for a terminal
func (f *Flow) QRText() (string, error) {
	link := f.Snapshot().UPILink
	if link == "" {
		return "", ErrNoPaymentLink
	}
	return TextQR(link)
}

// EncodeQR renders content as a PNG QR code
func EncodeQR(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// TextQR renders content as a QR code made of block characters
func TextQR(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return q.ToSmallString(false), nil
}
