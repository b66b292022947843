package notify

import (
	"context"
	"errors"
	"strings"
)

// Messenger delivers a preformatted text body to a destination phone
// number. Delivery is fire-and-forget; the engine never consumes a
// delivery confirmation.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

var ErrInvalidPhone = errors.New("invalid_phone")

// NormalizePhone turns a free-form local phone number into
// international dialing form: separators stripped, a leading zero
// dropped, the country code prefixed.
func NormalizePhone(raw, countryCode string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return "", ErrInvalidPhone
	}

	number = strings.TrimPrefix(number, "0")
	if number == "" {
		return "", ErrInvalidPhone
	}

	countryCode = strings.TrimSpace(countryCode)
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}
	return countryCode + number, nil
}

// NoopMessenger is used when no SMS credentials are configured; sends
// are dropped silently.
type NoopMessenger struct{}

func (NoopMessenger) Send(ctx context.Context, to, body string) error {
	return nil
}
