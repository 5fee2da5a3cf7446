package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ParseFunc turns a fetched document into raw material
type ParseFunc func(page *url.URL, doc *goquery.Selection) (*RawMaterial, error)

// CrawlerConfig configures the crawl unit
type CrawlerConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
	CrawlTimeout   time.Duration
}

// Crawler runs every fetch as an isolated unit: a fresh collector on its own
// goroutine that reports exactly one result.
type Crawler struct {
	config CrawlerConfig
	log    *zap.Logger
}

// NewCrawler creates a new crawl unit runner
func NewCrawler(config CrawlerConfig, log *zap.Logger) *Crawler {
	return &Crawler{
		config: config,
		log:    log,
	}
}

type crawlResult struct {
	material *RawMaterial
	err      error
}

// Crawl fetches rawURL and hands the parsed document to parse. It returns
// ErrCrawlTimeout when the unit does not report within the crawl timeout and
// ErrCrawlPanic when the unit panics.
func (c *Crawler) Crawl(ctx context.Context, rawURL string, parse ParseFunc) (*RawMaterial, error) {
	if c.config.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CrawlTimeout)
		defer cancel()
	}

	results := make(chan crawlResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- crawlResult{err: fmt.Errorf("%w: %v", ErrCrawlPanic, r)}
			}
		}()

		material, err := c.visit(ctx, rawURL, parse)
		results <- crawlResult{material: material, err: err}
	}()

	select {
	case res := <-results:
		return res.material, res.err
	case <-ctx.Done():
		c.log.Warn("Crawl abandoned", zap.String("url", rawURL), zap.Error(ctx.Err()))
		return nil, fmt.Errorf("%w: %v", ErrCrawlTimeout, ctx.Err())
	}
}

func (c *Crawler) visit(ctx context.Context, rawURL string, parse ParseFunc) (*RawMaterial, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	}
	if c.config.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.config.UserAgent))
	}

	collector := colly.NewCollector(opts...)
	if c.config.RequestTimeout > 0 {
		collector.SetRequestTimeout(c.config.RequestTimeout)
	}

	var (
		material *RawMaterial
		parseErr error
		fetchErr error
	)

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		material, parseErr = parse(e.Request.URL, e.DOM)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			fetchErr = fmt.Errorf("%w: %d", ErrHTTPStatus, r.StatusCode)
			return
		}
		fetchErr = fmt.Errorf("%w: %v", ErrTransport, err)
	})

	if err := collector.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("%w: %v", ErrTransport, err)
	}

	switch {
	case fetchErr != nil:
		return nil, fetchErr
	case parseErr != nil:
		return nil, parseErr
	case material == nil:
		return nil, ErrNoContent
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrCrawlTimeout, ctx.Err())
	}

	return material, nil
}
