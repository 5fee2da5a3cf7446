package extractor

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
	"github.com/DIP-Sharing-Board/discord-bot/internal/textanalysis"
)

const camphubHost = "camphub.in.th"

// camphubDeadlineSegment is the index of the deadline in the "|"-joined
// info headings of a camphub post
const camphubDeadlineSegment = 2

// CamphubStrategy reads the structured markup of camphub.in.th posts
type CamphubStrategy struct {
	crawler *Crawler
}

// NewCamphubStrategy creates a new camphub strategy
func NewCamphubStrategy(crawler *Crawler) *CamphubStrategy {
	return &CamphubStrategy{crawler: crawler}
}

func (s *CamphubStrategy) Name() string {
	return "camphub"
}

func (s *CamphubStrategy) Matches(u *url.URL) bool {
	return hostMatches(u, camphubHost)
}

func (s *CamphubStrategy) Extract(ctx context.Context, rawURL string) (*RawMaterial, error) {
	return s.crawler.Crawl(ctx, rawURL, parseCamphub)
}

func parseCamphub(page *url.URL, doc *goquery.Selection) (*RawMaterial, error) {
	return &RawMaterial{
		TopicHint:       camphubTopic(doc),
		ImageCandidates: camphubImages(page, doc),
		Deadline:        camphubDeadline(doc),
		Structured:      true,
	}, nil
}

func camphubTopic(doc *goquery.Selection) string {
	if title := strings.TrimSpace(doc.Find("h1.entry-title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return domain.DefaultTopic
}

// camphubImages lists the featured image first, then any other usable image
// on the page
func camphubImages(page *url.URL, doc *goquery.Selection) []string {
	var images []string
	seen := map[string]bool{}
	add := func(src string) {
		if !usableImage(src) {
			return
		}
		abs := resolveImage(page, src)
		if seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	}

	doc.Find("img.wp-post-image").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("data-src"); ok && usableImage(src) {
			add(src)
			return
		}
		src, _ := img.Attr("src")
		add(src)
	})

	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		add(src)
	})

	return images
}

func camphubDeadline(doc *goquery.Selection) *time.Time {
	var headings []string
	doc.Find("h4").Each(func(_ int, h *goquery.Selection) {
		if text := strings.TrimSpace(h.Text()); text != "" {
			headings = append(headings, text)
		}
	})

	segments := strings.Split(strings.Join(headings, "|"), "|")
	if len(segments) <= camphubDeadlineSegment {
		return nil
	}
	return textanalysis.ParseThaiDate(strings.TrimSpace(segments[camphubDeadlineSegment]))
}
