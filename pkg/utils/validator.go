package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pincodeRegex  = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	listSeparator = regexp.MustCompile(`[,;\s]+`)
)

// ValidatePincode validates a six digit postal index number
func ValidatePincode(pincode string) error {
	if !pincodeRegex.MatchString(pincode) {
		return fmt.Errorf("invalid pincode format: %q", pincode)
	}
	return nil
}

// SplitList splits a comma, semicolon or whitespace separated cell into trimmed items
func SplitList(s string) []string {
	var out []string
	for _, part := range listSeparator.Split(strings.TrimSpace(s), -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
