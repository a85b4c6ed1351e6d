// Package i18n looks up UI strings per locale from the site content
// directory. Lookups are pure functions of (key, locale); the only state is
// a memoization map of loaded bundles.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Locale is a lowercase two-letter language tag, e.g. "en", "de", "hr".
type Locale string

// DefaultLocale is the fallback for missing bundles and missing keys.
const DefaultLocale Locale = "en"

var localeShape = regexp.MustCompile(`^[a-z]{2}$`)

// Valid reports whether the tag has the expected shape. Tags are used to
// build file paths, so anything else is refused outright.
func (l Locale) Valid() bool {
	return localeShape.MatchString(string(l))
}

// Catalog serves translation bundles from <dir>/<locale>.json files.
type Catalog struct {
	dir string

	mu      sync.RWMutex
	bundles map[Locale]map[string]string
}

// NewCatalog creates a catalog over the given content directory.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:     dir,
		bundles: make(map[Locale]map[string]string),
	}
}

// Bundle returns the full string table for a locale, falling back to the
// default locale when the requested one is missing or malformed.
func (c *Catalog) Bundle(loc Locale) (map[string]string, error) {
	if loc.Valid() {
		if b, err := c.load(loc); err == nil {
			return b, nil
		}
	}
	if loc == DefaultLocale {
		return nil, fmt.Errorf("default locale bundle missing")
	}
	return c.Bundle(DefaultLocale)
}

// Translate returns the string for key in the given locale, falling back to
// the default locale, then to the empty string. A missing translation never
// errors; the front end leaves the element's current text untouched.
func (c *Catalog) Translate(key string, loc Locale) string {
	if bundle, err := c.Bundle(loc); err == nil {
		if v, ok := bundle[key]; ok {
			return v
		}
	}
	if loc != DefaultLocale {
		if bundle, err := c.Bundle(DefaultLocale); err == nil {
			if v, ok := bundle[key]; ok {
				return v
			}
		}
	}
	return ""
}

// load reads and memoizes one locale bundle.
func (c *Catalog) load(loc Locale) (map[string]string, error) {
	c.mu.RLock()
	bundle, ok := c.bundles[loc]
	c.mu.RUnlock()
	if ok {
		return bundle, nil
	}

	raw, err := os.ReadFile(filepath.Join(c.dir, string(loc)+".json"))
	if err != nil {
		return nil, fmt.Errorf("reading locale file: %w", err)
	}

	bundle = make(map[string]string)
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("parsing locale file %s: %w", loc, err)
	}

	c.mu.Lock()
	c.bundles[loc] = bundle
	c.mu.Unlock()
	return bundle, nil
}
