package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// ErrDisallowed is returned when robots.txt forbids fetching a source.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Page is a fetched remote document.
type Page struct {
	URL         string // final URL after redirects
	ContentType string
	Body        []byte
}

// Remote fetches documents politely: one shared per-host concurrency limit,
// per-host spacing and optional robots.txt checks.
type Remote struct {
	fetcher   *Fetcher
	hosts     *HostSemaphorePool
	limiter   *RateLimiter
	robots    *RobotsChecker // nil when robots.txt is not consulted
	userAgent string
	delay     time.Duration
	log       *logrus.Entry
}

// NewRemote wires a Remote from the application config.
func NewRemote(cfg *config.AppConfig, log *logrus.Entry) *Remote {
	client := NewClient(cfg.HTTPClientSettings, log)
	return NewRemoteWithClient(client, cfg, log)
}

// NewRemoteWithClient is NewRemote with a caller-supplied HTTP client.
func NewRemoteWithClient(client *http.Client, cfg *config.AppConfig, log *logrus.Entry) *Remote {
	fetcher := NewFetcher(client, PolicyFromConfig(cfg), log)
	r := &Remote{
		fetcher:   fetcher,
		hosts:     NewHostSemaphorePool(cfg.MaxRequestsPerHost, log),
		limiter:   NewRateLimiter(cfg.DelayPerHost, log),
		userAgent: cfg.UserAgent,
		delay:     cfg.DelayPerHost,
		log:       log,
	}
	if cfg.RespectRobotsTxt {
		r.robots = NewRobotsChecker(fetcher, cfg.UserAgent, log)
	}
	return r
}

// Get downloads rawURL and returns its body.
func (r *Remote) Get(ctx context.Context, rawURL string) (*Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("%w: invalid URL '%s'", utils.ErrParsing, rawURL)
	}
	host := target.Host
	getLog := r.log.WithField("url", rawURL)

	if r.robots != nil && !r.robots.Allowed(ctx, target) {
		getLog.Warn("Source disallowed by robots.txt")
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}

	if err := r.hosts.Acquire(ctx, host); err != nil {
		return nil, err
	}
	defer r.hosts.Release(host)

	r.limiter.ApplyDelay(ctx, host, r.delay)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.fetcher.FetchWithRetry(ctx, req)
	r.limiter.UpdateLastRequestTime(host)
	if err != nil {
		drain(resp)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	getLog.WithField("bytes", len(body)).Debug("Fetched remote source")
	return &Page{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
