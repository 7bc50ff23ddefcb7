// Package watch re-reads built-in documents on a fixed interval so remote
// sources stay current while a server runs.
package watch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

// Reloader re-reads the built-ins of one category. *viewer.Viewer satisfies it.
type Reloader interface {
	ReloadBuiltIns(ctx context.Context, categoryID string) (viewer.ReloadReport, error)
}

// Scheduler reloads each category once per interval.
type Scheduler struct {
	reloader   Reloader
	categories []string
	interval   time.Duration
	tracker    *Tracker
	now        func() time.Time
	log        *logrus.Entry
}

// NewScheduler creates a scheduler for the given category ids.
func NewScheduler(reloader Reloader, categories []string, interval time.Duration, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		reloader:   reloader,
		categories: categories,
		interval:   interval,
		tracker:    NewTracker(),
		now:        time.Now,
		log:        log.WithField("component", "watch"),
	}
}

// MarkLoaded records every category as freshly loaded, so the first reload
// waits a full interval after startup.
func (s *Scheduler) MarkLoaded() {
	now := s.now()
	for _, id := range s.categories {
		s.tracker.Update(id, CategoryState{LastRunTime: now, LastRunSuccess: true})
	}
}

// Run checks for due categories until ctx is cancelled. Reloads run one
// category at a time on the calling goroutine.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("reload interval must be positive, got %v", s.interval)
	}
	s.log.Infof("Reloading %d categories every %s", len(s.categories), FormatInterval(s.interval))

	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		s.RunDue(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("Watch scheduler shutting down...")
			return nil
		case <-ticker.C:
		}
	}
}

// RunDue reloads every category whose interval has passed and returns their ids.
func (s *Scheduler) RunDue(ctx context.Context) []string {
	var due []string
	for _, id := range s.categories {
		if s.tracker.ShouldRun(id, s.interval, s.now()) {
			due = append(due, id)
		}
	}

	for _, id := range due {
		if ctx.Err() != nil {
			break
		}
		report, err := s.reloader.ReloadBuiltIns(ctx, id)
		state := CategoryState{
			LastRunTime:    s.now(),
			LastRunSuccess: err == nil && len(report.Failures) == 0,
			Loaded:         report.Loaded,
			Failed:         len(report.Failures),
		}
		switch {
		case err != nil:
			state.ErrorMessage = err.Error()
			s.log.Errorf("Reload of '%s' failed: %v", id, err)
		case len(report.Failures) > 0:
			state.ErrorMessage = report.Failures[0].Message
			s.log.Warnf("Reload of '%s': %d loaded, %d failed", id, report.Loaded, len(report.Failures))
		default:
			s.log.Infof("Reloaded '%s': %d documents", id, report.Loaded)
		}
		s.tracker.Update(id, state)
	}

	if len(due) > 0 {
		s.logNextRun()
	}
	return due
}

// tickInterval checks ten times per interval, between one and ten minutes.
func (s *Scheduler) tickInterval() time.Duration {
	check := s.interval / 10
	if check < time.Minute {
		check = time.Minute
	}
	if check > 10*time.Minute {
		check = 10 * time.Minute
	}
	return check
}

func (s *Scheduler) logNextRun() {
	status := s.Status()
	if len(status) == 0 {
		return
	}
	next := status[0]
	until := time.Until(next.NextRunTime)
	if until < 0 {
		until = 0
	}
	s.log.Infof("Next reload: %s in %v (at %s)", next.CategoryID, until.Round(time.Second), next.NextRunTime.Format("15:04:05"))
}

// CategoryStatus is the reload schedule of one category.
type CategoryStatus struct {
	CategoryID string `json:"category_id"`
	CategoryState
	NextRunTime time.Time `json:"next_run_time"`
	NeverRun    bool      `json:"never_run"`
}

// Status returns every category ordered by next run time.
func (s *Scheduler) Status() []CategoryStatus {
	now := s.now()
	out := make([]CategoryStatus, 0, len(s.categories))
	for _, id := range s.categories {
		state, ok := s.tracker.Get(id)
		out = append(out, CategoryStatus{
			CategoryID:    id,
			CategoryState: state,
			NextRunTime:   s.tracker.NextRunTime(id, s.interval, now),
			NeverRun:      !ok,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextRunTime.Before(out[j].NextRunTime)
	})
	return out
}

// FormatInterval formats a duration for display
func FormatInterval(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		if mins > 0 {
			return fmt.Sprintf("%dh%dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}

// ParseInterval parses a duration string with support for days
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var days int
	var remaining string
	n, _ := fmt.Sscanf(s, "%dd%s", &days, &remaining)
	if n >= 1 {
		d = time.Duration(days) * 24 * time.Hour
		if remaining != "" {
			extra, err := time.ParseDuration(remaining)
			if err != nil {
				return 0, fmt.Errorf("invalid interval format: %s", s)
			}
			d += extra
		}
		return d, nil
	}

	return 0, fmt.Errorf("invalid interval format: %s (examples: 30m, 1h, 24h, 7d)", s)
}
