package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeFetch represents HTTP fetch errors
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParse represents HTML parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeNotification represents notification delivery errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeState represents seen-state persistence errors
	ErrorTypeState ErrorType = "state"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
)

// WatchError represents a watcher-specific error
type WatchError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *WatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *WatchError) Unwrap() error {
	return e.Err
}

// Fatal returns true if the error aborts the whole run. Notification,
// state and publisher errors are handled locally by the worker.
func (e *WatchError) Fatal() bool {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeFetch, ErrorTypeRateLimit, ErrorTypeParse:
		return true
	default:
		return false
	}
}

// New creates a new WatchError
func New(errType ErrorType, provider, message string, err error) *WatchError {
	return &WatchError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *WatchError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewFetch creates a new fetch error
func NewFetch(provider, message string, err error) *WatchError {
	return New(ErrorTypeFetch, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, duration time.Duration) *WatchError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewParse creates a new parse error
func NewParse(provider, message string, err error) *WatchError {
	return New(ErrorTypeParse, provider, message, err)
}

// NewNotification creates a new notification error
func NewNotification(provider, message string, err error) *WatchError {
	return New(ErrorTypeNotification, provider, message, err)
}

// NewState creates a new state persistence error
func NewState(message string, err error) *WatchError {
	return New(ErrorTypeState, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(provider, message string, err error) *WatchError {
	return New(ErrorTypePublisher, provider, message, err)
}
