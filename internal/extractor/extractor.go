package extractor

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrTransport covers DNS, connect and read failures
	ErrTransport = errors.New("transport failure")
	// ErrHTTPStatus is returned for 4xx and 5xx responses
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrMalformedResponse is returned when a response body cannot be decoded
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoContent is returned when a source yields nothing to extract from
	ErrNoContent = errors.New("no content")
	// ErrCrawlTimeout is returned when a crawl does not finish in time
	ErrCrawlTimeout = errors.New("crawl timed out")
	// ErrCrawlPanic is returned when a crawl unit panics
	ErrCrawlPanic = errors.New("crawl panicked")
)

// RawMaterial is what a strategy pulls out of a source before analysis.
// Structured material already carries its final topic and deadline; otherwise
// BodyText goes through the text analyzer.
type RawMaterial struct {
	TopicHint        string
	ImageCandidates  []string
	BodyText         string
	Deadline         *time.Time
	FallbackDeadline *time.Time
	Structured       bool
}

// Strategy extracts raw material from one family of sources
type Strategy interface {
	Name() string
	Matches(u *url.URL) bool
	Extract(ctx context.Context, rawURL string) (*RawMaterial, error)
}

var imageMarkers = []string{"logo", "placeholder", "data:image"}

// usableImage reports whether src looks like real content rather than a
// placeholder, a logo or an inline data URI.
func usableImage(src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:") {
		return false
	}
	for _, marker := range imageMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// resolveImage makes src absolute against the page it was found on
func resolveImage(page *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if page == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return page.ResolveReference(ref).String()
}

func hostMatches(u *url.URL, domain string) bool {
	if u == nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}
