package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsChecker fetches, caches and evaluates robots.txt per host.
type RobotsChecker struct {
	fetcher   *Fetcher
	cache     map[string]*robotstxt.RobotsData // host -> parsed rules, nil when unavailable
	mu        sync.Mutex
	userAgent string
	log       *logrus.Entry
}

// NewRobotsChecker creates a RobotsChecker that evaluates rules for userAgent.
func NewRobotsChecker(fetcher *Fetcher, userAgent string, log *logrus.Entry) *RobotsChecker {
	return &RobotsChecker{
		fetcher:   fetcher,
		cache:     make(map[string]*robotstxt.RobotsData),
		userAgent: userAgent,
		log:       log,
	}
}

// rules returns the cached or freshly fetched robots data for target's host. Nil means none.
func (rc *RobotsChecker) rules(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	host := target.Host

	rc.mu.Lock()
	data, found := rc.cache[host]
	rc.mu.Unlock()
	if found {
		return data
	}

	robotsURL := &url.URL{Scheme: target.Scheme, Host: host, Path: "/robots.txt"}
	robotsLog := rc.log.WithField("robots_url", robotsURL.String())
	robotsLog.Debug("Fetching robots.txt...")

	data = rc.fetch(ctx, robotsURL.String(), robotsLog)

	rc.mu.Lock()
	rc.cache[host] = data
	rc.mu.Unlock()
	return data
}

func (rc *RobotsChecker) fetch(ctx context.Context, robotsURL string, robotsLog *logrus.Entry) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.fetcher.FetchWithRetry(ctx, req)
	if err != nil {
		drain(resp)
		robotsLog.Debugf("robots.txt unavailable: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Errorf("Error reading body: %v", err)
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		robotsLog.Errorf("Error parsing content: %v", err)
		return nil
	}
	return data
}

// Allowed reports whether the user agent may fetch target.
// Hosts whose robots.txt cannot be fetched or parsed allow everything.
func (rc *RobotsChecker) Allowed(ctx context.Context, target *url.URL) bool {
	data := rc.rules(ctx, target)
	if data == nil {
		return true
	}
	return data.TestAgent(target.RequestURI(), rc.userAgent)
}
