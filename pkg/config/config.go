package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// FileConfig declares one built-in document.
type FileConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Source          string `yaml:"source"`                     // Local path (relative to the config file) or http(s) URL
	ContentSelector string `yaml:"content_selector,omitempty"` // CSS selector applied when the source serves HTML
}

// CategoryConfig groups built-in documents under one navigation heading.
type CategoryConfig struct {
	ID    string       `yaml:"id"`
	Name  string       `yaml:"name"`
	Files []FileConfig `yaml:"files"`
}

// QuickLink is a welcome-view shortcut to a built-in document.
type QuickLink struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	FileID      string `yaml:"file_id"`
}

// WelcomeConfig holds the text of the NoSelection view.
type WelcomeConfig struct {
	Title      string      `yaml:"title,omitempty"`
	Subtitle   string      `yaml:"subtitle,omitempty"`
	QuickLinks []QuickLink `yaml:"quick_links,omitempty"`
}

// AppConfig holds the global application configuration
type AppConfig struct {
	SiteTitle              string           `yaml:"site_title,omitempty"`
	SiteSubtitle           string           `yaml:"site_subtitle,omitempty"`
	FooterText             string           `yaml:"footer_text,omitempty"`
	NavigationHeadingLevel int              `yaml:"navigation_heading_level,omitempty"`
	ShowFileNameInNav      bool             `yaml:"show_file_name_in_nav,omitempty"`
	TopicExclusions        []string         `yaml:"topic_exclusions,omitempty"`
	StateDir               string           `yaml:"state_dir,omitempty"`
	StorageKey             string           `yaml:"storage_key,omitempty"`
	NumReadWorkers         int              `yaml:"num_read_workers,omitempty"`
	TokenEncoding          string           `yaml:"token_encoding,omitempty"`
	AllowRawHTML           bool             `yaml:"allow_raw_html,omitempty"`
	ListenAddr             string           `yaml:"listen_addr,omitempty"`
	UserAgent              string           `yaml:"user_agent,omitempty"`
	MaxRequestsPerHost     int              `yaml:"max_requests_per_host,omitempty"`
	DelayPerHost           time.Duration    `yaml:"delay_per_host,omitempty"`
	RespectRobotsTxt       bool             `yaml:"respect_robots_txt,omitempty"`
	ReloadInterval         string           `yaml:"reload_interval,omitempty"` // e.g. "6h", "1d"; empty disables periodic reloads in serve
	MaxRetries             int              `yaml:"max_retries,omitempty"`
	InitialRetryDelay      time.Duration    `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay          time.Duration    `yaml:"max_retry_delay,omitempty"`
	HTTPClientSettings     HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	Categories             []CategoryConfig `yaml:"categories,omitempty"`
	Welcome                WelcomeConfig    `yaml:"welcome,omitempty"`

	// BaseDir is the directory relative file sources resolve against. Set by Load.
	BaseDir string `yaml:"-"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// Load reads, parses and validates the YAML config at path. A missing file is
// not an error: it yields a validated empty configuration (no built-ins) and a warning.
func Load(path string) (*AppConfig, []string, error) {
	var cfg AppConfig
	var warnings []string

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		warnings = append(warnings, fmt.Sprintf("config file '%s' not found, starting without built-in documents", path))
	case err != nil:
		return nil, nil, fmt.Errorf("%w: read config '%s': %w", utils.ErrFilesystem, path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, fmt.Errorf("%w: parse config '%s' as YAML: %w", utils.ErrParsing, path, err)
		}
	}

	cfg.BaseDir = filepath.Dir(path)
	validateWarnings, err := cfg.Validate()
	warnings = append(warnings, validateWarnings...)
	if err != nil {
		return nil, warnings, err
	}
	return &cfg, warnings, nil
}

// AllFiles returns every built-in file in category then declaration order.
func (c *AppConfig) AllFiles() []FileConfig {
	var files []FileConfig
	for _, cat := range c.Categories {
		files = append(files, cat.Files...)
	}
	return files
}

// FindFile looks up a built-in file and its category by id.
func (c *AppConfig) FindFile(id string) (FileConfig, CategoryConfig, bool) {
	for _, cat := range c.Categories {
		for _, f := range cat.Files {
			if f.ID == id {
				return f, cat, true
			}
		}
	}
	return FileConfig{}, CategoryConfig{}, false
}

// IsRemote reports whether the source is fetched over HTTP.
func (f FileConfig) IsRemote() bool {
	lower := strings.ToLower(f.Source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolveSource returns the source as a URL or as a path resolved against baseDir.
func (f FileConfig) ResolveSource(baseDir string) string {
	if f.IsRemote() || filepath.IsAbs(f.Source) || baseDir == "" {
		return f.Source
	}
	return filepath.Join(baseDir, f.Source)
}

// GetEffectiveSiteTitle falls back to a generic title.
func GetEffectiveSiteTitle(appCfg AppConfig) string {
	if appCfg.SiteTitle != "" {
		return appCfg.SiteTitle
	}
	return "Documentation"
}

// GetEffectiveWelcomeTitle falls back to the site title.
func GetEffectiveWelcomeTitle(appCfg AppConfig) string {
	if appCfg.Welcome.Title != "" {
		return appCfg.Welcome.Title
	}
	return GetEffectiveSiteTitle(appCfg)
}
