package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	// Engine taxonomy, surfaced to presentation code
	ErrNotFound          = errors.New("not found")                     // Referenced document or section id does not exist
	ErrDuplicate         = errors.New("duplicate document")            // Upload collides with an existing document id
	ErrReadFailure       = errors.New("read failure")                  // A single file or network read failed
	ErrStorageCorrupt    = errors.New("persisted state is corrupt")    // Persisted data could not be decoded
	ErrInvalidInputType  = errors.New("unsupported file type")         // Upload extension is not .md/.markdown
	ErrRemovalNotPending = errors.New("no pending removal for token") // Confirm called with an unknown or used token

	// Infrastructure
	ErrRetryFailed        = errors.New("request failed after all retries") // Wraps the last underlying error
	ErrClientHTTPError    = errors.New("client HTTP error (4xx)")
	ErrServerHTTPError    = errors.New("server HTTP error (5xx)")
	ErrOtherHTTPError     = errors.New("other HTTP error (non-2xx)")
	ErrContentSelector    = errors.New("content selector not found")
	ErrParsing            = errors.New("parsing error")    // Wraps specific parsing error (HTML, URL, JSON, YAML)
	ErrFilesystem         = errors.New("filesystem error") // Wraps os errors
	ErrDatabase           = errors.New("database error")   // Wraps badger errors
	ErrRequestCreation    = errors.New("failed to create HTTP request")
	ErrResponseBodyRead   = errors.New("failed to read response body")
	ErrMarkdownConversion = errors.New("failed to convert HTML to markdown")
	ErrConfigValidation   = errors.New("configuration validation error")
)

// Error categories shared by every presentation surface.
const (
	CategoryNotFound         = "NOT_FOUND"
	CategoryDuplicate        = "DUPLICATE"
	CategoryReadFailure      = "READ_FAILURE"
	CategoryStorageCorrupt   = "STORAGE_CORRUPT"
	CategoryInvalidInputType = "INVALID_INPUT_TYPE"
)

// CategorizeError maps an error to a predefined category string for logging and reporting.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrDuplicate):
		return CategoryDuplicate
	case errors.Is(err, ErrInvalidInputType):
		return CategoryInvalidInputType
	case errors.Is(err, ErrStorageCorrupt):
		return CategoryStorageCorrupt
	case errors.Is(err, ErrReadFailure):
		// A read failure usually wraps a transport or filesystem cause; keep the engine category
		return CategoryReadFailure
	case errors.Is(err, ErrRemovalNotPending):
		return "Removal_NotPending"
	case errors.Is(err, ErrRetryFailed):
		// The fetcher joins ErrRetryFailed and the last cause with two %w verbs,
		// so the cause is found by walking err itself.
		if errors.Is(err, ErrServerHTTPError) {
			return "RetryFailed_HTTPServer"
		}
		if errors.Is(err, ErrClientHTTPError) {
			return "RetryFailed_HTTPClient"
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "RetryFailed_NetworkTimeout"
		}
		if err == ErrRetryFailed {
			return "RetryFailed_Unknown"
		}
		return "RetryFailed_NetworkOther"
	case errors.Is(err, ErrClientHTTPError):
		errMsg := err.Error()
		if strings.Contains(errMsg, " 404 ") {
			return "HTTP_404"
		}
		if strings.Contains(errMsg, " 403 ") {
			return "HTTP_403"
		}
		return "HTTP_4xx"
	case errors.Is(err, ErrServerHTTPError):
		return "HTTP_5xx"
	case errors.Is(err, ErrOtherHTTPError):
		return "HTTP_OtherStatus"
	case errors.Is(err, ErrContentSelector):
		return "Content_SelectorNotFound"
	case errors.Is(err, ErrMarkdownConversion):
		return "Content_Markdown"
	case errors.Is(err, ErrParsing):
		errMsg := err.Error()
		if strings.Contains(errMsg, "JSON") {
			return "Content_ParsingJSON"
		}
		if strings.Contains(errMsg, "YAML") {
			return "Content_ParsingYAML"
		}
		if strings.Contains(errMsg, "HTML") {
			return "Content_ParsingHTML"
		}
		return "Content_ParsingOther"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	case errors.Is(err, ErrResponseBodyRead):
		return "Network_BodyRead"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "connection refused") {
		return "Network_ConnectionRefused"
	}
	if strings.Contains(lowerErrMsg, "no such host") {
		return "Network_DNSLookup"
	}

	return "Unknown"
}
