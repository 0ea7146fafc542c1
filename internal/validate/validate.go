// Package validate holds input sanitization for destination URLs and custom
// aliases.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxURLLength is the longest accepted destination URL.
const MaxURLLength = 2048

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reserved path segments that a custom alias may never shadow.
var reservedAliases = map[string]struct{}{
	"api":     {},
	"admin":   {},
	"health":  {},
	"metrics": {},
	"static":  {},
	"assets":  {},
}

// SanitizeURL trims the input, prepends https:// when no scheme is present
// and validates the result. Returns the sanitized URL.
func SanitizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	if len(raw) > MaxURLLength {
		return "", fmt.Errorf("URL is too long (max %d characters)", MaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return "", fmt.Errorf("invalid URL format")
	}

	return raw, nil
}

// CustomAlias validates an optional custom alias: length bounds, the
// restricted character set, and the reserved-word list. An empty alias is
// valid because the field is optional.
func CustomAlias(alias string, minLength, maxLength int) error {
	if alias == "" {
		return nil
	}

	alias = strings.TrimSpace(alias)

	if _, ok := reservedAliases[strings.ToLower(alias)]; ok {
		return fmt.Errorf("%q is a reserved keyword and cannot be used as a custom alias", alias)
	}

	if len(alias) < minLength {
		return fmt.Errorf("custom alias must be at least %d characters", minLength)
	}
	if len(alias) > maxLength {
		return fmt.Errorf("custom alias must be at most %d characters", maxLength)
	}

	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("custom alias can only contain letters, numbers, hyphens, and underscores")
	}

	return nil
}
