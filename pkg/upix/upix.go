// Package upix builds UPI payment intents and their QR codes.
package upix

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strconv"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QRSize is the edge length of generated QR images, in pixels.
const QRSize = 256

var ErrNoPayee = errors.New("upix: payee VPA is required")

// Payee is the merchant receiving UPI transfers.
type Payee struct {
	VPA  string // e.g. mytestbuddies@okaxis
	Name string
}

// Intent is one requested transfer.
type Intent struct {
	AmountPaise int64
	Note        string // shown to the payer, carries the order reference
}

// URI renders a upi://pay deep link. The amount is written in rupees with
// two decimals.
func (p Payee) URI(in Intent) (string, error) {
	if strings.TrimSpace(p.VPA) == "" {
		return "", ErrNoPayee
	}

	q := url.Values{}
	q.Set("pa", p.VPA)
	if p.Name != "" {
		q.Set("pn", p.Name)
	}
	if in.AmountPaise > 0 {
		q.Set("am", FormatRupees(in.AmountPaise))
	}
	q.Set("cu", "INR")
	if in.Note != "" {
		q.Set("tn", in.Note)
	}

	return "upi://pay?" + strings.ReplaceAll(q.Encode(), "+", "%20"), nil
}

// FormatRupees renders paise as "123.45".
func FormatRupees(paise int64) string {
	return strconv.FormatInt(paise/100, 10) + "." + fmt.Sprintf("%02d", paise%100)
}

// OrderNote is the transaction note attached to an order's intent.
func OrderNote(orderID string) string {
	return "QUIZ-" + orderID
}

// QRDataURL encodes content as a PNG QR code inside a data: URL.
func QRDataURL(content string) (string, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("upix: encode qr: %w", err)
	}

	scaled, err := barcode.Scale(code, QRSize, QRSize)
	if err != nil {
		return "", fmt.Errorf("upix: scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("upix: png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
