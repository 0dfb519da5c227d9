package api

import "strings"

// AssetURL returns path unchanged when it is empty or already absolute
// (http, https or a data URI); otherwise it is prefixed with base.
func AssetURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http") || strings.HasPrefix(path, "data:") {
		return path
	}
	return base + path
}

// FormatURL makes sure a link carries a scheme. Empty input yields "#".
func FormatURL(raw string) string {
	if raw == "" {
		return "#"
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
