package models

import (
	"regexp"
	"strings"

	"gm-rewards/errs"
)

// ZeroAddress is the null account
const ZeroAddress = "0x0000000000000000000000000000000000000000"

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress lowercases and trims an account address
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsZeroAddress reports whether addr is empty or the null account
func IsZeroAddress(addr string) bool {
	a := NormalizeAddress(addr)
	if a == "" {
		return true
	}
	a = strings.TrimPrefix(a, "0x")
	return strings.Trim(a, "0") == ""
}

// ValidAddress reports whether addr is a 0x-prefixed 20-byte hex account
func ValidAddress(addr string) bool {
	return addressPattern.MatchString(NormalizeAddress(addr))
}

// CheckAddress returns the normalized form of an account that is about to be written
func CheckAddress(addr string) (string, error) {
	if IsZeroAddress(addr) {
		return "", errs.ErrZeroAddress
	}
	if !ValidAddress(addr) {
		return "", errs.ErrInvalidAddress.With("%q", addr)
	}
	return NormalizeAddress(addr), nil
}
