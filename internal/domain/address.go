package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// NormalizeAddress validates a destination email address and returns its
// bare addr-spec form ("Ada L <ada@example.com>" -> "ada@example.com").
// The check is deliberately minimal: a successful RFC 5322 header parse
// plus the presence of "@". Deliverability is the mail server's problem.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if !strings.Contains(parsed.Address, "@") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return parsed.Address, nil
}
