package discovery

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// InviteLink builds the shareable join URL for a room code.
func InviteLink(base, code string) string {
	return fmt.Sprintf("%s/join/%s", strings.TrimRight(base, "/"), code)
}

// InviteQR renders the join URL as a PNG of the given pixel size.
func InviteQR(base, code string, size int) ([]byte, error) {
	png, err := qrcode.Encode(InviteLink(base, code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding invite qr: %w", err)
	}
	return png, nil
}
