// Package errors provides custom error types for the price sync system.
// These errors enable programmatic error checking across the fetch, plan,
// and execute phases, and keep the fatal/non-fatal distinction explicit.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the sync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigInvalid indicates that the run configuration is unusable
	ErrConfigInvalid = errors.New("configuration invalid")

	// ErrCredentialsRequired indicates that platform credentials are missing
	ErrCredentialsRequired = errors.New("credentials required")

	// ErrFetchFailed indicates that a full catalog could not be retrieved
	ErrFetchFailed = errors.New("catalog fetch failed")

	// ErrUpdateFailed indicates that a single price update could not be applied
	ErrUpdateFailed = errors.New("price update failed")

	// ErrRateLimited indicates that the platform API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrPlatformUnavailable indicates that a platform API is temporarily unavailable
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error. Configuration errors are
// fatal: the run never starts.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// APIError represents an error response from a platform API
type APIError struct {
	Platform   string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Platform, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrPlatformUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(platform string, statusCode int, message string) *APIError {
	return &APIError{
		Platform:   platform,
		StatusCode: statusCode,
		Message:    message,
	}
}

// FetchError represents a failure while retrieving a full catalog.
// A fetch error is fatal to the run: partial results are discarded and no
// update is ever issued against an incomplete catalog.
type FetchError struct {
	Platform string
	Page     int
	Message  string
	Err      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("fetch from %s failed at page %d: %s", e.Platform, e.Page, e.Message)
	}
	return fmt.Sprintf("fetch from %s failed: %s", e.Platform, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// NewFetchError creates a new FetchError
func NewFetchError(platform string, page int, message string, err error) *FetchError {
	return &FetchError{
		Platform: platform,
		Page:     page,
		Message:  message,
		Err:      err,
	}
}

// UpdateError represents a failure to apply a single price update. Update
// errors are isolated per item: they are recorded in the run report and
// never abort the run.
type UpdateError struct {
	SKU      string
	NativeID string
	Price    float64
	Err      error
}

// Error implements the error interface
func (e *UpdateError) Error() string {
	return fmt.Sprintf("update of %s (id %s) to %.2f failed: %v", e.SKU, e.NativeID, e.Price, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpdateError) Is(target error) bool {
	return target == ErrUpdateFailed
}

// NewUpdateError creates a new UpdateError
func NewUpdateError(sku, nativeID string, price float64, err error) *UpdateError {
	return &UpdateError{
		SKU:      sku,
		NativeID: nativeID,
		Price:    price,
		Err:      err,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	Platform string
	Method   string // "api_key", "oauth", etc.
	Message  string
	Err      error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Platform, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrCredentialsRequired
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(platform, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Platform: platform,
		Method:   method,
		Message:  message,
		Err:      err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigInvalid checks if an error is a configuration error
func IsConfigInvalid(err error) bool {
	return errors.Is(err, ErrConfigInvalid)
}

// IsFetchFailed checks if an error aborted a catalog fetch
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsUpdateFailed checks if an error is a per-item update failure
func IsUpdateFailed(err error) bool {
	return errors.Is(err, ErrUpdateFailed)
}

// IsPlatformUnavailable checks if an error is a platform outage error
func IsPlatformUnavailable(err error) bool {
	return errors.Is(err, ErrPlatformUnavailable)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Source: source, Message: err.Error(), Err: err}
}

// WrapAPI wraps an error as an APIError
func WrapAPI(platform string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Platform:   platform,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
