// Package content defines the one schema all guest/explore page content
// files must satisfy. Pages are tagged unions of section kinds; anything
// that does not validate is rejected at load time so the site renders a
// safe placeholder instead of guessing at field names.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// SectionKind tags the shape of one page section.
type SectionKind string

const (
	KindList SectionKind = "list"
	KindHTML SectionKind = "html"
	KindText SectionKind = "text"
	KindWifi SectionKind = "wifi"
)

// ErrInvalidContent is wrapped by every validation failure.
var ErrInvalidContent = errors.New("invalid content")

// WifiDetails carries the guest network credentials for the wifi card.
type WifiDetails struct {
	Network  string `json:"network"`
	Password string `json:"password"`
}

// Section is one content card. Exactly the payload field matching Kind must
// be populated.
type Section struct {
	Kind  SectionKind  `json:"type"`
	Title string       `json:"title"`
	Items []string     `json:"items,omitempty"`
	HTML  string       `json:"html,omitempty"`
	Text  string       `json:"text,omitempty"`
	Wifi  *WifiDetails `json:"wifi,omitempty"`
}

// Page is a validated content document for one page and locale.
type Page struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Sections []Section `json:"sections"`
}

// Decode parses and validates a content document, failing closed: any
// malformed section invalidates the whole page.
func Decode(r io.Reader) (Page, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var page Page
	if err := dec.Decode(&page); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := page.Validate(); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Validate checks the tagged-union invariants.
func (p Page) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: page title missing", ErrInvalidContent)
	}
	for i, sec := range p.Sections {
		if err := sec.validate(); err != nil {
			return fmt.Errorf("section %d (%q): %w", i, sec.Title, err)
		}
	}
	return nil
}

func (s Section) validate() error {
	switch s.Kind {
	case KindList:
		if len(s.Items) == 0 {
			return fmt.Errorf("%w: list section without items", ErrInvalidContent)
		}
	case KindHTML:
		if s.HTML == "" {
			return fmt.Errorf("%w: html section without markup", ErrInvalidContent)
		}
	case KindText:
		if s.Text == "" {
			return fmt.Errorf("%w: text section without text", ErrInvalidContent)
		}
	case KindWifi:
		if s.Wifi == nil || s.Wifi.Network == "" {
			return fmt.Errorf("%w: wifi section without network", ErrInvalidContent)
		}
	default:
		return fmt.Errorf("%w: unknown section kind %q", ErrInvalidContent, s.Kind)
	}
	return nil
}

var (
	pageShape   = regexp.MustCompile(`^[a-z0-9-]+$`)
	localeShape = regexp.MustCompile(`^[a-z]{2}$`)
)

// Loader reads page content from <dir>/<page>/<locale>.json with fallback
// to the default locale, mirroring how the site's front end has always
// loaded apartment and guest content.
type Loader struct {
	dir string
}

// NewLoader creates a loader over the content directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the validated page for the locale, falling back to "en".
// Page and locale tags are shape-checked before touching the filesystem, so
// path-ish names never reach the disk and read as absent pages.
func (l *Loader) Load(page, locale string) (Page, error) {
	if !pageShape.MatchString(page) {
		return Page{}, fmt.Errorf("page %q: %w", page, fs.ErrNotExist)
	}
	if !localeShape.MatchString(locale) {
		locale = "en"
	}

	doc, err := l.read(page, locale)
	if err != nil && locale != "en" {
		return l.read(page, "en")
	}
	return doc, err
}

func (l *Loader) read(page, locale string) (Page, error) {
	f, err := os.Open(filepath.Join(l.dir, page, locale+".json"))
	if err != nil {
		return Page{}, fmt.Errorf("opening content file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
