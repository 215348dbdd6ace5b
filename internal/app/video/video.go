package video

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	apperrors "video-transcript/internal/app/errors"
)

// Reference is a resolved video: an opaque id extracted from user input
// plus optional metadata. Duration is 0 when unknown; the player may
// refine it later, resolution never does.
type Reference struct {
	ID       string
	URL      string
	Title    string
	Duration int // seconds, 0 when unknown
}

var (
	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([\w-]+)`),
	}

	watchURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/[\w-]+`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/[\w-]+`),
	}
)

// ExtractVideoID pulls the video id out of a watch, short or embed URL.
// Returns an empty string when no pattern matches.
func ExtractVideoID(url string) string {
	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// ValidateWatchURL checks that the input looks like a supported video URL.
func ValidateWatchURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &apperrors.ResolutionError{Input: url}
	}
	for _, pattern := range watchURLPatterns {
		if pattern.MatchString(url) {
			return nil
		}
	}
	return &apperrors.ResolutionError{Input: url}
}

// Resolver turns user input into a Reference, optionally enriching it with
// page metadata (title, duration) fetched over HTTP.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Reference, error)
}

// HTTPResolver resolves references against the public watch page.
type HTTPResolver struct {
	client *http.Client
}

// NewHTTPResolver creates a resolver with a bounded request timeout.
func NewHTTPResolver(timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPResolver{client: &http.Client{Timeout: timeout}}
}

// Resolve validates the URL, extracts the id, then tries to fetch title and
// duration from the watch page. Metadata failures are tolerated: the id is
// enough to run the pipeline, a missing duration only disables fail-fast.
func (r *HTTPResolver) Resolve(ctx context.Context, url string) (*Reference, error) {
	url = strings.TrimSpace(url)
	if err := ValidateWatchURL(url); err != nil {
		return nil, err
	}

	id := ExtractVideoID(url)
	if id == "" {
		return nil, &apperrors.ResolutionError{Input: url}
	}

	ref := &Reference{ID: id, URL: url}

	title, duration, err := r.fetchMetadata(ctx, id)
	if err == nil {
		ref.Title = title
		ref.Duration = duration
	}

	return ref, nil
}

func (r *HTTPResolver) fetchMetadata(ctx context.Context, videoID string) (string, int, error) {
	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", 0, err
	}

	return ParseWatchPage(doc)
}

// ParseWatchPage extracts title and duration from a watch page document.
// The duration comes from the itemprop meta tag ("PT1H2M3S" form); missing
// or malformed values yield 0.
func ParseWatchPage(doc *goquery.Document) (string, int, error) {
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	duration := 0
	if raw, ok := doc.Find(`meta[itemprop="duration"]`).Attr("content"); ok {
		duration = parseISODuration(raw)
	}

	if title == "" && duration == 0 {
		return "", 0, fmt.Errorf("no metadata found in watch page")
	}
	return title, duration, nil
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

func parseISODuration(raw string) int {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0
	}
	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		total += n * unit
	}
	return total
}
