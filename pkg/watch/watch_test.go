package watch

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"1h", time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1d12h", 36 * time.Hour, false},
		{"2d6h", 54 * time.Hour, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseInterval(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseInterval(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseInterval(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{24 * time.Hour, "1d"},
		{36 * time.Hour, "1d12h"},
		{7 * 24 * time.Hour, "7d"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := FormatInterval(tt.input)
			if got != tt.expected {
				t.Errorf("FormatInterval(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

type fakeReloader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeReloader) ReloadBuiltIns(_ context.Context, categoryID string) (viewer.ReloadReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, categoryID)
	if err := f.fail[categoryID]; err != nil {
		return viewer.ReloadReport{}, err
	}
	if categoryID == "partial" {
		return viewer.ReloadReport{Loaded: 1, Failures: []models.FileFailure{{Name: "x", Message: "boom"}}}, nil
	}
	return viewer.ReloadReport{Loaded: 2}, nil
}

func newTestScheduler(r Reloader, categories []string, interval time.Duration) (*Scheduler, *time.Time) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewScheduler(r, categories, interval, logrus.NewEntry(log))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	now := time.Now()

	assert.True(t, tr.ShouldRun("docs", time.Hour, now), "never-run category is due")
	assert.Equal(t, now, tr.NextRunTime("docs", time.Hour, now))

	tr.Update("docs", CategoryState{LastRunTime: now, LastRunSuccess: true, Loaded: 3})
	assert.False(t, tr.ShouldRun("docs", time.Hour, now.Add(59*time.Minute)))
	assert.True(t, tr.ShouldRun("docs", time.Hour, now.Add(time.Hour)))
	assert.Equal(t, now.Add(time.Hour), tr.NextRunTime("docs", time.Hour, now))

	all := tr.All()
	require.Len(t, all, 1)
	assert.Equal(t, 3, all["docs"].Loaded)
}

func TestScheduler_RunDue(t *testing.T) {
	r := &fakeReloader{fail: map[string]error{"broken": errors.New("unreachable")}}
	s, now := newTestScheduler(r, []string{"docs", "broken", "partial"}, time.Hour)

	due := s.RunDue(context.Background())
	assert.Equal(t, []string{"docs", "broken", "partial"}, due)

	states := s.tracker.All()
	assert.True(t, states["docs"].LastRunSuccess)
	assert.Equal(t, 2, states["docs"].Loaded)
	assert.False(t, states["broken"].LastRunSuccess)
	assert.Equal(t, "unreachable", states["broken"].ErrorMessage)
	assert.False(t, states["partial"].LastRunSuccess)
	assert.Equal(t, 1, states["partial"].Failed)

	assert.Empty(t, s.RunDue(context.Background()), "nothing due before the interval passes")

	*now = now.Add(time.Hour)
	assert.Len(t, s.RunDue(context.Background()), 3)
	assert.Len(t, r.calls, 6)
}

func TestScheduler_MarkLoadedDefersFirstRun(t *testing.T) {
	r := &fakeReloader{}
	s, now := newTestScheduler(r, []string{"docs"}, 30*time.Minute)

	s.MarkLoaded()
	assert.Empty(t, s.RunDue(context.Background()))

	status := s.Status()
	require.Len(t, status, 1)
	assert.False(t, status[0].NeverRun)
	assert.Equal(t, now.Add(30*time.Minute), status[0].NextRunTime)
}

func TestScheduler_RunRejectsZeroInterval(t *testing.T) {
	s, _ := newTestScheduler(&fakeReloader{}, []string{"docs"}, 0)
	assert.Error(t, s.Run(context.Background()))
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	r := &fakeReloader{}
	s, _ := newTestScheduler(r, []string{"docs"}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.calls) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
