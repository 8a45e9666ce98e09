package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a builder type name, style rule id or pack identifier.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateLocation validates a resource location within a pack for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Location cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateLocation(location string) error {
	if location == "" {
		return New(ErrCodeInvalidReference, "location cannot be empty")
	}

	const maxLocationLength = 500
	if len(location) > maxLocationLength {
		return New(ErrCodeInvalidReference, "location too long (max %d characters)", maxLocationLength)
	}

	for _, r := range location {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidReference, "location contains invalid characters")
		}
	}

	if strings.HasPrefix(location, "/") {
		return New(ErrCodeInvalidReference, "location must be relative (cannot start with /)")
	}

	if strings.Contains(location, "..") {
		return New(ErrCodeInvalidReference, "location cannot contain path traversal sequences (..)")
	}

	if strings.Contains(location, "\\") {
		return New(ErrCodeInvalidReference, "location cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates an architect endpoint URL.
// It ensures the URL has a scheme the socket transport can dial.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https, ws or wss scheme")
}

// packIdentifierRegex matches valid pack identifiers (lowercase, digits, dash, underscore).
var packIdentifierRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidatePack validates a pack identifier such as "minecraft" or "base-pack".
func ValidatePack(pack string) error {
	if err := ValidateName(pack); err != nil {
		return err
	}

	if !packIdentifierRegex.MatchString(pack) {
		return New(ErrCodeInvalidReference, "invalid pack identifier: %q", pack)
	}

	return nil
}
