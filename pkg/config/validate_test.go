package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestAppConfig_Validate_Defaults(t *testing.T) {
	cfg := AppConfig{} // Zero value
	warnings, err := cfg.Validate()

	require.NoError(t, err)

	assert.Equal(t, 2, cfg.NavigationHeadingLevel)
	assert.Equal(t, []string{"table of contents", "from basic to advanced"}, cfg.TopicExclusions)
	assert.Equal(t, "./navigator_state", cfg.StateDir)
	assert.Equal(t, "uploadedFiles", cfg.StorageKey)
	assert.Equal(t, 4, cfg.NumReadWorkers)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 2, cfg.MaxRequestsPerHost)
	assert.Equal(t, time.Duration(0), cfg.DelayPerHost)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1*time.Second, cfg.InitialRetryDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxRetryDelay)

	// Check HTTP client defaults
	assert.Equal(t, 45*time.Second, cfg.HTTPClientSettings.Timeout)
	assert.Equal(t, 100, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 2, cfg.HTTPClientSettings.MaxIdleConnsPerHost)
	assert.Equal(t, 90*time.Second, cfg.HTTPClientSettings.IdleConnTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientSettings.TLSHandshakeTimeout)
	assert.Equal(t, 1*time.Second, cfg.HTTPClientSettings.ExpectContinueTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTPClientSettings.DialerTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientSettings.DialerKeepAlive)

	assert.True(t, containsWarning(warnings, "state_dir is empty"))
}

func TestAppConfig_Validate_NavigationLevel(t *testing.T) {
	tests := []struct {
		in          int
		want        int
		wantWarning bool
	}{
		{0, 2, false},
		{1, 1, false},
		{3, 3, false},
		{6, 6, false},
		{7, 2, true},
		{-1, 2, true},
	}
	for _, tt := range tests {
		cfg := AppConfig{NavigationHeadingLevel: tt.in, StateDir: "x"}
		warnings, err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, tt.want, cfg.NavigationHeadingLevel, "input %d", tt.in)
		assert.Equal(t, tt.wantWarning, containsWarning(warnings, "navigation_heading_level"), "input %d", tt.in)
	}
}

func TestAppConfig_Validate_EmptyExclusionsKept(t *testing.T) {
	cfg := AppConfig{TopicExclusions: []string{}}

	_, err := cfg.Validate()

	require.NoError(t, err)
	assert.NotNil(t, cfg.TopicExclusions)
	assert.Empty(t, cfg.TopicExclusions)
}

func TestAppConfig_Validate_RetryDelayInversion(t *testing.T) {
	cfg := AppConfig{
		MaxRetries:        2,
		InitialRetryDelay: 10 * time.Second,
		MaxRetryDelay:     5 * time.Second,
	}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.InitialRetryDelay)
	assert.True(t, containsWarning(warnings, "initial_retry_delay"))
}

func TestAppConfig_Validate_NegativeDelayPerHost(t *testing.T) {
	cfg := AppConfig{DelayPerHost: -time.Second}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.DelayPerHost)
	assert.True(t, containsWarning(warnings, "delay_per_host"))
}

func TestAppConfig_Validate_NegativeRetries(t *testing.T) {
	cfg := AppConfig{MaxRetries: -1, InitialRetryDelay: time.Second}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.True(t, containsWarning(warnings, "max_retries cannot be negative"))
}

func TestAppConfig_Validate_Categories(t *testing.T) {
	cfg := AppConfig{
		Categories: []CategoryConfig{{
			ID: "basics",
			Files: []FileConfig{
				{ID: "intro", Source: "docs/intro.md"},
				{ID: "api", Name: "API", Source: "https://example.com/api.md"},
			},
		}},
	}

	_, err := cfg.Validate()

	require.NoError(t, err)
	assert.Equal(t, "basics", cfg.Categories[0].Name, "name defaults to id")
	assert.Equal(t, "intro", cfg.Categories[0].Files[0].Name, "name defaults to source file name")
	assert.Equal(t, "API", cfg.Categories[0].Files[1].Name)
}

func TestAppConfig_Validate_CategoryErrors(t *testing.T) {
	tests := []struct {
		name       string
		categories []CategoryConfig
		wantErr    string
	}{
		{
			name:       "missing category id",
			categories: []CategoryConfig{{Name: "x"}},
			wantErr:    "has no id",
		},
		{
			name:       "duplicate category id",
			categories: []CategoryConfig{{ID: "a"}, {ID: "a"}},
			wantErr:    "duplicate category id",
		},
		{
			name:       "missing file id",
			categories: []CategoryConfig{{ID: "a", Files: []FileConfig{{Source: "x.md"}}}},
			wantErr:    "file has no id",
		},
		{
			name:       "empty source",
			categories: []CategoryConfig{{ID: "a", Files: []FileConfig{{ID: "f", Source: "  "}}}},
			wantErr:    "needs a source",
		},
		{
			name: "duplicate file id across categories",
			categories: []CategoryConfig{
				{ID: "a", Files: []FileConfig{{ID: "f", Source: "1.md"}}},
				{ID: "b", Files: []FileConfig{{ID: "f", Source: "2.md"}}},
			},
			wantErr: "duplicate file id 'f'",
		},
		{
			name:       "reserved uploaded prefix",
			categories: []CategoryConfig{{ID: "a", Files: []FileConfig{{ID: "uploaded-guide", Source: "g.md"}}}},
			wantErr:    "reserved prefix",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Categories: tt.categories}
			_, err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrConfigValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAppConfig_Validate_EmptyCategoryWarns(t *testing.T) {
	cfg := AppConfig{Categories: []CategoryConfig{{ID: "empty"}}}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	assert.True(t, containsWarning(warnings, "declares no files"))
}

func TestAppConfig_Validate_QuickLinks(t *testing.T) {
	cfg := AppConfig{
		Categories: []CategoryConfig{{ID: "c", Files: []FileConfig{{ID: "intro", Source: "intro.md"}}}},
		Welcome: WelcomeConfig{QuickLinks: []QuickLink{
			{Title: "Start", FileID: "intro"},
			{Title: "Broken", FileID: "missing"},
			{FileID: "intro"},
		}},
	}

	warnings, err := cfg.Validate()

	require.NoError(t, err)
	require.Len(t, cfg.Welcome.QuickLinks, 2)
	assert.Equal(t, "Start", cfg.Welcome.QuickLinks[0].Title)
	assert.Equal(t, "intro", cfg.Welcome.QuickLinks[1].Title)
	assert.True(t, containsWarning(warnings, "unknown file 'missing'"))
}
