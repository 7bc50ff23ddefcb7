package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

// --- CategorizeError Tests ---

func TestCategorizeError_NilError(t *testing.T) {
	result := CategorizeError(nil)
	if result != "None" {
		t.Errorf("CategorizeError(nil) = %q, want %q", result, "None")
	}
}

func TestCategorizeError_EngineTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"NotFound", ErrNotFound, "NOT_FOUND"},
		{"Duplicate", ErrDuplicate, "DUPLICATE"},
		{"ReadFailure", ErrReadFailure, "READ_FAILURE"},
		{"StorageCorrupt", ErrStorageCorrupt, "STORAGE_CORRUPT"},
		{"InvalidInputType", ErrInvalidInputType, "INVALID_INPUT_TYPE"},
		{"WrappedNotFound", fmt.Errorf("%w: section 'setup' in 'guide'", ErrNotFound), "NOT_FOUND"},
		{"WrappedDuplicate", fmt.Errorf("%w: uploaded-guide", ErrDuplicate), "DUPLICATE"},
		{"ReadFailureWrapsFilesystem", fmt.Errorf("%w: %w", ErrReadFailure, fmt.Errorf("%w: %w", ErrFilesystem, os.ErrNotExist)), "READ_FAILURE"},
		{"RemovalNotPending", ErrRemovalNotPending, "Removal_NotPending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_Infrastructure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ServerHTTPError", ErrServerHTTPError, "HTTP_5xx"},
		{"OtherHTTPError", ErrOtherHTTPError, "HTTP_OtherStatus"},
		{"Client404", fmt.Errorf("%w: status 404 Not Found", ErrClientHTTPError), "HTTP_404"},
		{"Client4xx", fmt.Errorf("%w: status 400", ErrClientHTTPError), "HTTP_4xx"},
		{"RetryServer", fmt.Errorf("%w: %w", ErrRetryFailed, ErrServerHTTPError), "RetryFailed_HTTPServer"},
		{"RetryServerStatus", fmt.Errorf("%w: %w", ErrRetryFailed, fmt.Errorf("%w: status 503", ErrServerHTTPError)), "RetryFailed_HTTPServer"},
		{"RetryClientStatus", fmt.Errorf("%w: %w", ErrRetryFailed, fmt.Errorf("%w: status 429", ErrClientHTTPError)), "RetryFailed_HTTPClient"},
		{"RetryNetworkOther", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("connection reset by peer")), "RetryFailed_NetworkOther"},
		{"RetryBare", ErrRetryFailed, "RetryFailed_Unknown"},
		{"ContentSelector", ErrContentSelector, "Content_SelectorNotFound"},
		{"MarkdownConversion", ErrMarkdownConversion, "Content_Markdown"},
		{"ParsingJSON", fmt.Errorf("%w: JSON decode", ErrParsing), "Content_ParsingJSON"},
		{"ParsingYAML", fmt.Errorf("%w: YAML decode", ErrParsing), "Content_ParsingYAML"},
		{"Database", ErrDatabase, "Database_Other"},
		{"FilesystemNotExist", fmt.Errorf("%w: %w", ErrFilesystem, os.ErrNotExist), "Filesystem_NotExist"},
		{"ConfigValidation", ErrConfigValidation, "Config_Validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_ContextErrors(t *testing.T) {
	if got := CategorizeError(context.Canceled); got != "System_ContextCanceled" {
		t.Errorf("CategorizeError(Canceled) = %q", got)
	}
	if got := CategorizeError(context.DeadlineExceeded); got != "System_ContextDeadlineExceeded" {
		t.Errorf("CategorizeError(DeadlineExceeded) = %q", got)
	}
}

func TestCategorizeError_Unknown(t *testing.T) {
	if got := CategorizeError(errors.New("something odd")); got != "Unknown" {
		t.Errorf("CategorizeError(unknown) = %q, want Unknown", got)
	}
}

// --- SanitizeFilename Tests ---

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "hello", "hello"},
		{"WithSpaces", "hello world", "hello world"},
		{"WithSlash", "path/to/file", "path_to_file"},
		{"WithBackslash", "path\\to\\file", "path_to_file"},
		{"WithColon", "file:name", "file_name"},
		{"WithQuotes", `file"name`, "file_name"},
		{"WithMultipleInvalid", "a<b>c:d", "a_b_c_d"},
		{"ConsecutiveUnderscores", "a___b", "a_b"},
		{"LeadingUnderscore", "_file", "file"},
		{"TrailingUnderscore", "file_", "file"},
		{"LeadingTrailingSpaces", "  file  ", "file"},
		{"Empty", "", "untitled"},
		{"OnlyInvalidChars", "<>:", "untitled"},
		{"OnlyUnderscores", "___", "untitled"},
		{"QuestionMark", "file?name", "file_name"},
		{"Asterisk", "file*name", "file_name"},
		{"Pipe", "file|name", "file_name"},
		{"NullChar", "file\x00name", "file_name"},
		{"ControlChars", "file\x01\x02name", "file_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_LongNames(t *testing.T) {
	// Create a string longer than maxFilenameLength (100)
	longName := ""
	for i := 0; i < 150; i++ {
		longName += "a"
	}

	result := SanitizeFilename(longName)
	if len(result) > 100 {
		t.Errorf("SanitizeFilename(long) length = %d, want <= 100", len(result))
	}
}

// --- Markdown file name helpers ---

func TestIsMarkdownFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"guide.md", true},
		{"guide.markdown", true},
		{"dir/guide.md", true},
		{"guide.txt", false},
		{"guide.MD", false},
		{"guide.md.bak", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarkdownFile(tt.name); got != tt.expected {
				t.Errorf("IsMarkdownFile(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestTrimExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Guide.md", "Guide"},
		{"docs/Guide.md", "Guide"},
		{"notes.v2.markdown", "notes.v2"},
		{"README", "README"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TrimExtension(tt.input); got != tt.expected {
				t.Errorf("TrimExtension(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("My: Guide"); got != "My_ Guide.md" {
		t.Errorf("ExportFilename() = %q, want %q", got, "My_ Guide.md")
	}
	if got := ExportFilename(""); got != "untitled.md" {
		t.Errorf("ExportFilename(empty) = %q, want %q", got, "untitled.md")
	}
}
