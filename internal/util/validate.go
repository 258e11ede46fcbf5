package util

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidateEmail checks that s is a bare address such as "ops@example.com".
// Display-name forms ("Ops <ops@example.com>") are rejected.
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return fmt.Errorf("email %q is not a valid address", s)
	}
	return nil
}
