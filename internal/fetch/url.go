package fetch

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveReference resolves ref against the URL of the document that contains it
func ResolveReference(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse reference %q: %w", ref, err)
	}
	if base == "" || refURL.IsAbs() {
		return refURL.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// WithQueryParam appends key=value to the URL unless the key is already present or value is empty.
// The existing query is kept byte for byte.
func WithQueryParam(rawURL, key, value string) string {
	if value == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Query().Has(key) {
		return rawURL
	}

	base, fragment := rawURL, ""
	if i := strings.Index(rawURL, "#"); i >= 0 {
		base, fragment = rawURL[:i], rawURL[i:]
	}

	separator := "&"
	switch {
	case !strings.Contains(base, "?"):
		separator = "?"
	case strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&"):
		separator = ""
	}
	return base + separator + url.QueryEscape(key) + "=" + url.QueryEscape(value) + fragment
}

// QueryValue returns the value of key in the query of rawURL
func QueryValue(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func StripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// LocalPath turns a file:// URL into a filesystem path, other inputs are returned unchanged
func LocalPath(rawURL string) string {
	if !strings.HasPrefix(rawURL, "file://") {
		return StripQuery(rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.TrimPrefix(rawURL, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// PathToURL turns a local path into a file:// URL so that relative references resolve against it
func PathToURL(path string) (string, error) {
	if strings.Contains(path, "://") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
