package errors

import (
	"strings"
	"unicode"
)

const (
	maxPortalNameLength    = 128
	maxContainerNameLength = 256
)

// ValidatePortalName validates the name of a portal or an exposed portal proxy.
//
// Portal names are identifiers on the wire (links reference portals by name),
// so they must be non-empty, free of control characters and surrounding
// whitespace, and at most 128 characters long. Uniqueness on the owning node
// is checked by the node, not here.
func ValidatePortalName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "portal name cannot be empty")
	}
	if len(name) > maxPortalNameLength {
		return New(ErrCodeInvalidInput, "portal name too long (max %d characters)", maxPortalNameLength)
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "portal name %q has leading or trailing whitespace", name)
	}
	if hasControl(name) {
		return New(ErrCodeInvalidInput, "portal name contains invalid control characters")
	}
	return nil
}

// ValidateContainerName validates the display name of a behaviour container.
func ValidateContainerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "container name cannot be empty")
	}
	if len(name) > maxContainerNameLength {
		return New(ErrCodeInvalidInput, "container name too long (max %d characters)", maxContainerNameLength)
	}
	if hasControl(name) {
		return New(ErrCodeInvalidInput, "container name contains invalid control characters")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
