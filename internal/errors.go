package internal

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when the model backend does not report
// itself as readily available.
var ErrModelUnavailable = errors.New("language model unavailable")

// PromptError represents a failure raised by the backend during generation
type PromptError struct {
	SessionID string
	Err       error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt failed [session %s]: %v", e.SessionID, e.Err)
}

func (e *PromptError) Unwrap() error {
	return e.Err
}

// StorageError represents errors reading or writing the key-value store
type StorageError struct {
	Key string
	Op  string // "get", "set", "append", "list"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RetriesExhaustedError is the terminal failure of a queued request
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate insights after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// ScrapeError represents errors extracting items from a page
type ScrapeError struct {
	Source string // file path or URL
	Err    error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape error [%s]: %v", e.Source, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
