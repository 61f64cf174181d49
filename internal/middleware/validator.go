package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude out of range: %f (allowed: -90..90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude out of range: %f (allowed: -180..180)", lon)
	}
	return nil
}

// ValidateUserID checks the caller-supplied user identifier.
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if len(userID) > 64 {
		return fmt.Errorf("user ID too long (max 64 chars)")
	}
	for _, r := range userID {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return fmt.Errorf("invalid user ID format (alphanumeric, dash, underscore only)")
		}
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
