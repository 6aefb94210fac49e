package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// MaxMediaBytes caps attachment size (image or audio) per request.
const MaxMediaBytes = 10 << 20 // 10 MiB

// MaxContentChars caps diary text length.
const MaxContentChars = 10000

// ValidateAnalysisType checks if the analysis type is in the allowed list
func ValidateAnalysisType(typ string) error {
	allowed := map[string]bool{
		"text":       true,
		"image":      true,
		"voice":      true,
		"multimodal": true,
	}

	if !allowed[strings.ToLower(typ)] {
		return fmt.Errorf("invalid analysis type: %s (allowed: text, image, voice, multimodal)", typ)
	}
	return nil
}

// ValidateSubjectID validates subject ID format
func ValidateSubjectID(subject string) error {
	if subject == "" {
		return fmt.Errorf("subject ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, subject)
	if !matched {
		return fmt.Errorf("invalid subject ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateMediaSize checks attachment payload size
func ValidateMediaSize(data []byte, field string) error {
	if len(data) > MaxMediaBytes {
		return fmt.Errorf("%s exceeds max size of %d bytes", field, MaxMediaBytes)
	}
	return nil
}

// ValidateContentLength checks diary text length
func ValidateContentLength(content string) error {
	if len([]rune(content)) > MaxContentChars {
		return fmt.Errorf("content exceeds max length of %d characters", MaxContentChars)
	}
	return nil
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
