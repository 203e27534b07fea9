package utils

import (
	"regexp"
	"strings"
)

var phoneStripper = regexp.MustCompile(`[^\d+]`)

// NormalizePhone strips spaces, dashes and parentheses. Unlike E.164
// formatting it keeps national numbers with a leading zero intact.
func NormalizePhone(phone string) string {
	return phoneStripper.ReplaceAllString(strings.TrimSpace(phone), "")
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}

	// Show last 4 digits
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

func MaskPhones(phones []string) []string {
	masked := make([]string, len(phones))
	for i, phone := range phones {
		masked[i] = MaskPhone(phone)
	}
	return masked
}
