package validator

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleRunes bounds the title part of generated file names
const MaxTitleRunes = 200

// ValidateURL reports whether the URL is absolute http(s) and its host is one of
// allowedDomains or a subdomain of one
func ValidateURL(videoURL string, allowedDomains []string) bool {
	u, err := url.Parse(videoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	for _, domain := range allowedDomains {
		cleanDomain := strings.ToLower(strings.TrimSpace(domain))
		if len(cleanDomain) == 0 {
			continue
		}
		if host == cleanDomain || strings.HasSuffix(host, "."+cleanDomain) {
			return true
		}
	}

	return false
}

// IsDirectURL reports whether s is an absolute http(s) URL with a host
func IsDirectURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeFilename replaces path separators, reserved characters and control
// characters with "_" and trims surrounding whitespace and dots
func SanitizeFilename(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}

// TruncateFilename truncates filename to max length while preserving extension
// Uses rune-level truncation to properly handle UTF-8 multi-byte characters
func TruncateFilename(filename string, maxLen int) string {
	runes := []rune(filename)
	if len(runes) <= maxLen {
		return filename
	}

	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 {
		return string(runes[:maxLen])
	}

	ext := filename[lastDot:]
	availableLen := maxLen - len([]rune(ext))
	if availableLen <= 0 {
		return string(runes[:maxLen])
	}

	return string(runes[:availableLen]) + ext
}

// BuildFileName derives a safe file name from a video title and extension.
// The title part is cut to MaxTitleRunes.
func BuildFileName(title, ext string) string {
	base := SanitizeFilename(title)
	if base == "" {
		base = "video"
	}
	if ext == "" {
		return strings.TrimRight(TruncateFilename(base, MaxTitleRunes), " .")
	}

	suffix := "." + ext
	name := TruncateFilename(base+suffix, MaxTitleRunes+utf8.RuneCountInString(suffix))
	return strings.TrimRight(strings.TrimSuffix(name, suffix), " .") + suffix
}
