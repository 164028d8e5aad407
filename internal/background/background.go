// Package background probes the page backdrop image. The probe is best
// effort: any failure means "no image" and is never reported to callers.
package background

import (
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/patrickmn/go-cache"
)

const (
	cacheKey        = "backdrop"
	maxImageHeader  = 1 << 20
	defaultTimeout  = 5 * time.Second
	defaultCacheTTL = 10 * time.Minute
)

type Recorder interface {
	RecordBackdrop(available bool)
}

type Fetcher struct {
	url        string
	timeout    time.Duration
	client     *http.Client
	cache      *cache.Cache
	recorder   Recorder
	refreshing atomic.Bool
}

type Option func(*Fetcher)

// WithClient replaces the SSRF-guarded client, mainly for tests against a
// loopback server.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) {
		f.recorder = r
	}
}

func NewFetcher(url string, timeout, ttl time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	f := &Fetcher{
		url:     strings.TrimSpace(url),
		timeout: timeout,
		cache:   cache.New(ttl, 2*ttl),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newSafeClient(timeout)
	}
	return f
}

func newSafeClient(timeout time.Duration) *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(cfg).Client
}

func (f *Fetcher) Enabled() bool {
	return f.url != ""
}

// URL returns the image url when the last probe found it usable, and "" when
// it did not or no probe has finished yet. It never blocks: a cache miss
// starts a probe in the background.
func (f *Fetcher) URL() string {
	if !f.Enabled() {
		return ""
	}
	if v, ok := f.cache.Get(cacheKey); ok {
		if available, _ := v.(bool); available {
			return f.url
		}
		return ""
	}
	f.refreshAsync()
	return ""
}

// Warm runs one probe synchronously, bounded by the fetch timeout. It does
// nothing when a probe is already in flight.
func (f *Fetcher) Warm(ctx context.Context) {
	if !f.Enabled() || !f.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer f.refreshing.Store(false)
	f.probeWithTimeout(ctx)
}

func (f *Fetcher) refreshAsync() {
	if !f.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer f.refreshing.Store(false)
		f.probeWithTimeout(context.Background())
	}()
}

func (f *Fetcher) probeWithTimeout(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	f.Refresh(ctx)
}

// Refresh probes the image and caches the outcome.
func (f *Fetcher) Refresh(ctx context.Context) bool {
	available := f.probe(ctx) == nil
	f.cache.SetDefault(cacheKey, available)
	if f.recorder != nil {
		f.recorder.RecordBackdrop(available)
	}
	return available
}

var (
	errStatus      = errors.New("unexpected status")
	errContentType = errors.New("not an image")
)

func (f *Fetcher) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errStatus
	}
	if !strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "image/") {
		return errContentType
	}

	_, _, err = image.DecodeConfig(io.LimitReader(resp.Body, maxImageHeader))
	if errors.Is(err, image.ErrFormat) {
		// webp, avif and friends: the server says image and we cannot check.
		return nil
	}
	return err
}
