package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
	"go.uber.org/zap"
)

const (
	instagramHost        = "instagram.com"
	instagramQueryHash   = "b3055c01b4b222b8a47dc12b090e4e64"
	instagramAppIDHeader = "x-ig-app-id"
	maxInstagramBody     = 4 << 20
)

var (
	shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	postProjection = jmespath.MustCompile(`{
		main_image_url: display_url,
		caption: edge_media_to_caption.edges[0].node.text,
		timestamp: taken_at_timestamp,
		is_video: is_video
	}`)
)

// InstagramConfig configures the post lookup
type InstagramConfig struct {
	AppID    string
	Endpoint string
	Timeout  time.Duration
}

// InstagramStrategy resolves a post through the public GraphQL endpoint. The
// call is made once with no retry.
type InstagramStrategy struct {
	client *http.Client
	config InstagramConfig
	log    *zap.Logger
}

// NewInstagramStrategy creates a new instagram strategy. A nil client gets a
// default one bounded by config.Timeout.
func NewInstagramStrategy(config InstagramConfig, client *http.Client, log *zap.Logger) *InstagramStrategy {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &InstagramStrategy{
		client: client,
		config: config,
		log:    log,
	}
}

func (s *InstagramStrategy) Name() string {
	return "instagram"
}

func (s *InstagramStrategy) Matches(u *url.URL) bool {
	return hostMatches(u, instagramHost)
}

// instagramPost is the projected subset of a post
type instagramPost struct {
	ImageURL  string
	Caption   string
	Timestamp int64
	IsVideo   bool
}

func (s *InstagramStrategy) Extract(ctx context.Context, rawURL string) (*RawMaterial, error) {
	shortcode, err := Shortcode(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	media, err := s.fetchMedia(ctx, shortcode)
	if err != nil {
		return nil, err
	}

	post, err := projectPost(media)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Instagram post fetched",
		zap.String("shortcode", shortcode),
		zap.Bool("is_video", post.IsVideo))

	material := &RawMaterial{BodyText: post.Caption}
	if !post.IsVideo && post.ImageURL != "" {
		material.ImageCandidates = []string{post.ImageURL}
	}
	if post.Timestamp > 0 {
		y, m, d := time.Unix(post.Timestamp, 0).UTC().Date()
		published := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		material.FallbackDeadline = &published
	}

	return material, nil
}

// Shortcode returns the post shortcode of a /p/, /reel/ or /tv/ URL. Input
// that is not a URL is taken as a bare shortcode.
func Shortcode(urlOrShortcode string) (string, error) {
	s := strings.TrimSpace(urlOrShortcode)
	if !strings.Contains(s, "://") {
		code := strings.Trim(s, "/")
		if !shortcodePattern.MatchString(code) {
			return "", fmt.Errorf("invalid shortcode: %q", urlOrShortcode)
		}
		return code, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		switch segments[i] {
		case "p", "reel", "tv":
			if code := segments[i+1]; shortcodePattern.MatchString(code) {
				return code, nil
			}
		}
	}
	return "", fmt.Errorf("no shortcode in url: %q", urlOrShortcode)
}

type postQueryVariables struct {
	Shortcode           string `json:"shortcode"`
	ChildCommentCount   int    `json:"child_comment_count"`
	FetchCommentCount   int    `json:"fetch_comment_count"`
	ParentCommentCount  int    `json:"parent_comment_count"`
	HasThreadedComments bool   `json:"has_threaded_comments"`
}

func (s *InstagramStrategy) fetchMedia(ctx context.Context, shortcode string) (interface{}, error) {
	variables, err := json.Marshal(postQueryVariables{Shortcode: shortcode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query variables: %w", err)
	}

	query := url.Values{}
	query.Set("query_hash", instagramQueryHash)
	query.Set("variables", string(variables))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(instagramAppIDHeader, s.config.AppID)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInstagramBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrTransport, err)
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	media, err := jmespath.Search("data.shortcode_media", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if media == nil {
		return nil, fmt.Errorf("%w: post %s has no media", ErrNoContent, shortcode)
	}
	return media, nil
}

func projectPost(media interface{}) (*instagramPost, error) {
	projected, err := postProjection.Search(media)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	fields, ok := projected.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected post shape", ErrMalformedResponse)
	}

	post := &instagramPost{}
	post.ImageURL, _ = fields["main_image_url"].(string)
	post.Caption, _ = fields["caption"].(string)
	post.IsVideo, _ = fields["is_video"].(bool)
	if ts, ok := fields["timestamp"].(float64); ok {
		post.Timestamp = int64(ts)
	}
	return post, nil
}
