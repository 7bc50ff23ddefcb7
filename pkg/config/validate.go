package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// Defaults applied by Validate.
const (
	DefaultNavigationLevel = 2
	DefaultStateDir        = "./navigator_state"
	DefaultStorageKey      = "uploadedFiles"
	DefaultNumReadWorkers  = 4
	DefaultListenAddr      = "localhost:8080"
	DefaultUserAgent       = "doc-navigator/1.0"

	// uploadedIDPrefix is reserved for ids derived from upload names.
	uploadedIDPrefix = "uploaded-"
)

// DefaultTopicExclusions mirrors markdown.DefaultTopicExclusions for configs that omit the list.
var DefaultTopicExclusions = []string{"table of contents", "from basic to advanced"}

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// NavigationHeadingLevel
	switch {
	case c.NavigationHeadingLevel == 0:
		c.NavigationHeadingLevel = DefaultNavigationLevel
	case c.NavigationHeadingLevel < 1 || c.NavigationHeadingLevel > 6:
		warnings = append(warnings, fmt.Sprintf(
			"navigation_heading_level %d out of range 1..6, defaulting to %d",
			c.NavigationHeadingLevel, DefaultNavigationLevel))
		c.NavigationHeadingLevel = DefaultNavigationLevel
	}

	// TopicExclusions (explicit empty list keeps every heading)
	if c.TopicExclusions == nil {
		c.TopicExclusions = append([]string(nil), DefaultTopicExclusions...)
	}

	// StateDir
	if c.StateDir == "" {
		warnings = append(warnings, fmt.Sprintf("state_dir is empty, defaulting to '%s'", DefaultStateDir))
		c.StateDir = DefaultStateDir
	}

	// StorageKey
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}

	// NumReadWorkers
	if c.NumReadWorkers <= 0 {
		c.NumReadWorkers = DefaultNumReadWorkers
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// MaxRequestsPerHost
	if c.MaxRequestsPerHost <= 0 {
		c.MaxRequestsPerHost = 2
	}

	// DelayPerHost
	if c.DelayPerHost < 0 {
		warnings = append(warnings, "delay_per_host cannot be negative, disabling delay")
		c.DelayPerHost = 0
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}

	// InitialRetryDelay > MaxRetryDelay check
	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"initial_retry_delay (%v) > max_retry_delay (%v), using max_retry_delay for initial",
			c.InitialRetryDelay, c.MaxRetryDelay))
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	c.validateHTTPClientSettings()

	catWarnings, err := c.validateCategories()
	warnings = append(warnings, catWarnings...)
	if err != nil {
		return warnings, err
	}

	warnings = append(warnings, c.validateWelcome()...)
	return warnings, nil
}

// validateCategories enforces unique, non-empty ids and non-empty sources.
func (c *AppConfig) validateCategories() (warnings []string, err error) {
	categoryIDs := make(map[string]bool)
	fileIDs := make(map[string]string) // file id -> category id

	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.ID == "" {
			return warnings, fmt.Errorf("%w: category #%d has no id", utils.ErrConfigValidation, i+1)
		}
		if categoryIDs[cat.ID] {
			return warnings, fmt.Errorf("%w: duplicate category id '%s'", utils.ErrConfigValidation, cat.ID)
		}
		categoryIDs[cat.ID] = true
		if cat.Name == "" {
			cat.Name = cat.ID
		}
		if len(cat.Files) == 0 {
			warnings = append(warnings, fmt.Sprintf("category '%s' declares no files", cat.ID))
		}

		for j := range cat.Files {
			f := &cat.Files[j]
			if err := f.Validate(); err != nil {
				return warnings, fmt.Errorf("category '%s' file #%d: %w", cat.ID, j+1, err)
			}
			if other, dup := fileIDs[f.ID]; dup {
				return warnings, fmt.Errorf("%w: duplicate file id '%s' (categories '%s' and '%s')",
					utils.ErrConfigValidation, f.ID, other, cat.ID)
			}
			fileIDs[f.ID] = cat.ID
		}
	}
	return warnings, nil
}

// validateWelcome drops quick links that point at unknown files.
func (c *AppConfig) validateWelcome() (warnings []string) {
	kept := c.Welcome.QuickLinks[:0]
	for _, link := range c.Welcome.QuickLinks {
		if _, _, ok := c.FindFile(link.FileID); !ok {
			warnings = append(warnings, fmt.Sprintf("quick link '%s' points at unknown file '%s', ignoring", link.Title, link.FileID))
			continue
		}
		if link.Title == "" {
			link.Title = link.FileID
		}
		kept = append(kept, link)
	}
	c.Welcome.QuickLinks = kept
	return warnings
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// Validate checks a built-in file declaration and fills in its display name.
func (f *FileConfig) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: file has no id", utils.ErrConfigValidation)
	}
	if strings.HasPrefix(f.ID, uploadedIDPrefix) {
		return fmt.Errorf("%w: file id '%s' uses the reserved prefix '%s'", utils.ErrConfigValidation, f.ID, uploadedIDPrefix)
	}
	if strings.TrimSpace(f.Source) == "" {
		return fmt.Errorf("%w: file '%s' needs a source", utils.ErrConfigValidation, f.ID)
	}
	if f.Name == "" {
		f.Name = utils.TrimExtension(f.Source)
		if f.Name == "" {
			f.Name = f.ID
		}
	}
	return nil
}
