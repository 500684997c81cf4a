package service

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	utrPattern    = regexp.MustCompile(`^[A-Z0-9]{8,22}$`)
)

// NormalizeEmail trims and lower cases an address.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// NormalizeMobile keeps digits only.
func NormalizeMobile(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func validEmail(s string) bool { return emailPattern.MatchString(s) }

func validMobile(s string) bool { return mobilePattern.MatchString(s) }

// NormalizeUTR upper cases a UPI transaction reference and strips spaces.
func NormalizeUTR(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func validUTR(s string) bool { return utrPattern.MatchString(s) }

// missing lists the names whose values are blank, in order.
func missing(pairs ...[2]string) []string {
	var out []string
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) == "" {
			out = append(out, p[0])
		}
	}
	return out
}
