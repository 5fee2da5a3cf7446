package extractor

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/DIP-Sharing-Board/discord-bot/internal/textanalysis"
)

// GenericStrategy reads any HTML page: visible body text for analysis and the
// first usable image
type GenericStrategy struct {
	crawler *Crawler
}

// NewGenericStrategy creates a new generic strategy
func NewGenericStrategy(crawler *Crawler) *GenericStrategy {
	return &GenericStrategy{crawler: crawler}
}

func (s *GenericStrategy) Name() string {
	return "generic"
}

// Matches accepts every URL; the generic strategy must be ordered last
func (s *GenericStrategy) Matches(*url.URL) bool {
	return true
}

func (s *GenericStrategy) Extract(ctx context.Context, rawURL string) (*RawMaterial, error) {
	return s.crawler.Crawl(ctx, rawURL, parseGeneric)
}

func parseGeneric(page *url.URL, doc *goquery.Selection) (*RawMaterial, error) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc
	}
	body = body.Clone()
	body.Find("script, style, noscript").Remove()

	var parts []string
	collectText(body, &parts)

	material := &RawMaterial{
		BodyText: textanalysis.Normalize(strings.Join(parts, " ")),
	}

	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if !usableImage(src) {
			return true
		}
		material.ImageCandidates = append(material.ImageCandidates, resolveImage(page, src))
		return false
	})

	return material, nil
}

// collectText appends the non-empty text nodes under s in document order
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			if text := strings.TrimSpace(node.Text()); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(node, parts)
	})
}
