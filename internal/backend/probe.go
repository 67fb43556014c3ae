package backend

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"storefront/internal/config"
)

// ErrNotConfigured wraps every probe failure.
var ErrNotConfigured = errors.New("live backend not configured")

var placeholders = []string{"your-project", "your_project", "example.com", "example.org", "changeme", "<", ">"}

const minKeyLen = 20

// Probe checks that the live backend configuration is structurally usable.
// It never touches the network: a passing probe only means the URL and the
// public key look real.
func Probe(cfg config.BackendConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("%w: url is empty", ErrNotConfigured)
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: url does not parse", ErrNotConfigured)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w: unsupported url scheme %q", ErrNotConfigured, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: url has no host", ErrNotConfigured)
	}
	if isPlaceholder(u.Hostname()) {
		return fmt.Errorf("%w: url host is a placeholder", ErrNotConfigured)
	}

	key := cfg.AnonKey
	switch {
	case key == "":
		return fmt.Errorf("%w: public key is empty", ErrNotConfigured)
	case strings.IndexFunc(key, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: public key contains whitespace", ErrNotConfigured)
	case len(key) < minKeyLen:
		return fmt.Errorf("%w: public key is too short", ErrNotConfigured)
	case isPlaceholder(key) || strings.Contains(strings.ToLower(key), "your-anon-key"):
		return fmt.Errorf("%w: public key is a placeholder", ErrNotConfigured)
	}
	return nil
}

func isPlaceholder(s string) bool {
	s = strings.ToLower(s)
	for _, p := range placeholders {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
