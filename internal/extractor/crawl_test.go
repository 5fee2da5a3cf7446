package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCrawler(crawlTimeout time.Duration) *Crawler {
	return NewCrawler(CrawlerConfig{
		UserAgent:      "test-agent",
		RequestTimeout: 5 * time.Second,
		CrawlTimeout:   crawlTimeout,
	}, zap.NewNop())
}

func htmlHandler(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}
}

func titleParser(_ *url.URL, doc *goquery.Selection) (*RawMaterial, error) {
	return &RawMaterial{TopicHint: doc.Find("title").Text()}, nil
}

func TestCrawler_Crawl_Success(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		htmlHandler(`<html><head><title>Robotics Camp</title></head><body></body></html>`)(w, r)
	}))
	defer server.Close()

	material, err := newTestCrawler(5*time.Second).Crawl(context.Background(), server.URL, titleParser)

	require.NoError(t, err)
	assert.Equal(t, "Robotics Camp", material.TopicHint)
	assert.Equal(t, "test-agent", userAgent)
}

func TestCrawler_Crawl_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	material, err := newTestCrawler(5*time.Second).Crawl(context.Background(), server.URL, titleParser)

	assert.Nil(t, material)
	assert.True(t, errors.Is(err, ErrHTTPStatus), "got %v", err)
}

func TestCrawler_Crawl_TransportFailure(t *testing.T) {
	server := httptest.NewServer(htmlHandler("<html></html>"))
	addr := server.URL
	server.Close()

	material, err := newTestCrawler(5*time.Second).Crawl(context.Background(), addr, titleParser)

	assert.Nil(t, material)
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestCrawler_Crawl_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	material, err := newTestCrawler(50*time.Millisecond).Crawl(context.Background(), server.URL, titleParser)

	assert.Nil(t, material)
	assert.True(t, errors.Is(err, ErrCrawlTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCrawler_Crawl_ParserPanic(t *testing.T) {
	server := httptest.NewServer(htmlHandler("<html><body>x</body></html>"))
	defer server.Close()

	panicky := func(*url.URL, *goquery.Selection) (*RawMaterial, error) {
		panic("selector exploded")
	}

	material, err := newTestCrawler(5*time.Second).Crawl(context.Background(), server.URL, panicky)

	assert.Nil(t, material)
	assert.True(t, errors.Is(err, ErrCrawlPanic), "got %v", err)
}

func TestCrawler_Crawl_NotHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x00, 0x01})
	}))
	defer server.Close()

	material, err := newTestCrawler(5*time.Second).Crawl(context.Background(), server.URL, titleParser)

	assert.Nil(t, material)
	assert.True(t, errors.Is(err, ErrNoContent), "got %v", err)
}
