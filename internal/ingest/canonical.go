package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var urlOnlyPattern = regexp.MustCompile(`^https?://\S+$`)

// Canonicalize appends a trailing slash when the URL lacks one. Nothing else
// is changed, so "/a" and "/a/" share a hash key.
func Canonicalize(rawURL string) string {
	if strings.HasSuffix(rawURL, "/") {
		return rawURL
	}
	return rawURL + "/"
}

// HashKey returns the hex MD5 digest of the canonical URL. MD5 keeps keys
// compatible with rows written by earlier versions of the bot.
func HashKey(rawURL string) string {
	sum := md5.Sum([]byte(Canonicalize(rawURL)))
	return hex.EncodeToString(sum[:])
}

// ParseURL accepts message text that is exactly one http(s) URL
func ParseURL(text string) (string, error) {
	text = strings.TrimSpace(text)
	if !urlOnlyPattern.MatchString(text) {
		return "", fmt.Errorf("message is not a single url")
	}

	u, err := url.Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host: %q", text)
	}
	return text, nil
}
