package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/iksnae/shopsavvy/internal"
)

// DefaultSettle is how long a rendered page gets for dynamic content to load
const DefaultSettle = 3 * time.Second

var errNoCartItems = errors.New("no cart items found")

// Fetcher loads a page and extracts it
type Fetcher interface {
	Fetch(ctx context.Context) (*Page, error)
}

// Source is a page that can be fetched whole or just for its cart
type Source interface {
	Fetcher
	internal.CartSource
}

// FileSource reads a saved page from disk
type FileSource struct {
	Path string
}

// Fetch parses the file at Path
func (s *FileSource) Fetch(ctx context.Context) (*Page, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &internal.ScrapeError{Source: s.Path, Err: err}
	}
	defer f.Close()

	page, err := Parse(f)
	if err != nil {
		return nil, &internal.ScrapeError{Source: s.Path, Err: err}
	}
	return page, nil
}

// FetchCart implements internal.CartSource
func (s *FileSource) FetchCart(ctx context.Context) ([]internal.CartItem, error) {
	return fetchCart(ctx, s, s.Path)
}

// BrowserSource renders a live page in Chrome before extracting it
type BrowserSource struct {
	URL      string
	Settle   time.Duration
	Headless bool
	// ExecPath overrides the Chrome binary; empty uses the default lookup
	ExecPath string
}

// Fetch navigates to URL, waits for the page to settle and parses its HTML
func (s *BrowserSource) Fetch(ctx context.Context) (*Page, error) {
	settle := s.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.Headless),
		chromedp.Flag("disable-gpu", s.Headless),
	)
	if path := strings.TrimSpace(s.ExecPath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	internal.LogInfo("Rendering %s (settle %s)", s.URL, settle)
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &internal.ScrapeError{Source: s.URL, Err: err}
	}

	page, err := Parse(strings.NewReader(html))
	if err != nil {
		return nil, &internal.ScrapeError{Source: s.URL, Err: err}
	}
	return page, nil
}

// FetchCart implements internal.CartSource
func (s *BrowserSource) FetchCart(ctx context.Context) ([]internal.CartItem, error) {
	return fetchCart(ctx, s, s.URL)
}

func fetchCart(ctx context.Context, f Fetcher, source string) ([]internal.CartItem, error) {
	page, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		internal.LogError("No cart items found in %s", source)
		return nil, &internal.ScrapeError{Source: source, Err: errNoCartItems}
	}
	internal.LogInfo("Found %d cart item(s) in %s", len(page.Items), source)
	return page.Items, nil
}

// NewSource picks a BrowserSource for http(s) URLs and a FileSource otherwise
func NewSource(location string, settle time.Duration) (Source, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("no page location given")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &BrowserSource{URL: location, Settle: settle, Headless: true}, nil
	default:
		return &FileSource{Path: location}, nil
	}
}
