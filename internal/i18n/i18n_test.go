package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, dir, locale, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, locale+".json"), []byte(content), 0o644))
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	writeBundle(t, dir, "en", `{"nav_contact":"Contact","hero_title":"Two apartments by the sea"}`)
	writeBundle(t, dir, "de", `{"nav_contact":"Kontakt"}`)
	writeBundle(t, dir, "hr", `{not json`)
	return NewCatalog(dir)
}

func TestTranslate(t *testing.T) {
	c := newTestCatalog(t)

	assert.Equal(t, "Contact", c.Translate("nav_contact", "en"))
	assert.Equal(t, "Kontakt", c.Translate("nav_contact", "de"))
}

func TestTranslateFallsBackToDefaultLocale(t *testing.T) {
	c := newTestCatalog(t)

	// Key missing from the de bundle.
	assert.Equal(t, "Two apartments by the sea", c.Translate("hero_title", "de"))
	// Whole bundle missing.
	assert.Equal(t, "Contact", c.Translate("nav_contact", "it"))
	// Bundle present but malformed: fail closed onto the default.
	assert.Equal(t, "Contact", c.Translate("nav_contact", "hr"))
}

func TestTranslateMissingKey(t *testing.T) {
	c := newTestCatalog(t)
	assert.Empty(t, c.Translate("no_such_key", "en"))
}

func TestBundleRejectsPathishLocales(t *testing.T) {
	c := newTestCatalog(t)

	for _, loc := range []Locale{"../en", "EN", "e", "english", ""} {
		assert.False(t, loc.Valid(), "locale %q", loc)
		bundle, err := c.Bundle(loc)
		require.NoError(t, err, "invalid locales fall back to the default bundle")
		assert.Equal(t, "Contact", bundle["nav_contact"])
	}
}

func TestBundleMemoizes(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "en", `{"k":"v1"}`)
	c := NewCatalog(dir)

	first, err := c.Bundle("en")
	require.NoError(t, err)
	assert.Equal(t, "v1", first["k"])

	// Rewriting the file must not change what an already-loaded catalog
	// serves; bundles are memoized for the process lifetime.
	writeBundle(t, dir, "en", `{"k":"v2"}`)
	second, err := c.Bundle("en")
	require.NoError(t, err)
	assert.Equal(t, "v1", second["k"])
}
