package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport-level failures (timeout, DNS, reset)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus represents a response with a status other than 200
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeLookup represents an expected markup node that is absent
	ErrorTypeLookup ErrorType = "lookup"
	// ErrorTypeFormat represents a node whose text does not match the expected pattern
	ErrorTypeFormat ErrorType = "format"
	// ErrorTypeValidation represents an extracted record that fails validation
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotify represents notification delivery errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeStore represents seen-store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// MonitorError is the error type shared by every stage of the monitor.
type MonitorError struct {
	Type ErrorType
	// Subject names what failed: a URL, a field name or a component.
	Subject    string
	Message    string
	StatusCode int
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Subject, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Subject, e.Message)
}

// Unwrap returns the underlying error
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *MonitorError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeStatus:
		// 4xx other than 408/429 will not change on retry
		if e.StatusCode >= 500 || e.StatusCode == 408 || e.StatusCode == 429 {
			return true
		}
		return false
	case ErrorTypeNotify:
		// only a webhook answer asking to come back later
		return e.StatusCode >= 500 || e.StatusCode == 429
	default:
		return false
	}
}

// New creates a new MonitorError
func New(errType ErrorType, subject, message string, err error) *MonitorError {
	return &MonitorError{
		Type:    errType,
		Subject: subject,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(url, message string, err error) *MonitorError {
	return New(ErrorTypeNetwork, url, message, err)
}

// NewStatus creates a new unexpected status error
func NewStatus(url string, statusCode int) *MonitorError {
	e := New(ErrorTypeStatus, url, fmt.Sprintf("unexpected status code: %d", statusCode), nil)
	e.StatusCode = statusCode
	return e
}

// NewLookup creates a new error for a missing markup node
func NewLookup(field, message string) *MonitorError {
	return New(ErrorTypeLookup, field, message, nil)
}

// NewFormat creates a new error for malformed node text
func NewFormat(field, message string, err error) *MonitorError {
	return New(ErrorTypeFormat, field, message, err)
}

// NewValidation creates a new validation error
func NewValidation(subject, message string, err error) *MonitorError {
	return New(ErrorTypeValidation, subject, message, err)
}

// NewNotify creates a new notification error
func NewNotify(subject, message string, err error) *MonitorError {
	return New(ErrorTypeNotify, subject, message, err)
}

// NewStore creates a new seen-store error
func NewStore(subject, message string, err error) *MonitorError {
	return New(ErrorTypeStore, subject, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *MonitorError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the type of the first MonitorError in err's chain, or an
// empty ErrorType when there is none.
func TypeOf(err error) ErrorType {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.Type
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.StatusCode
	}
	return 0
}

// IsRetryable reports whether err's chain holds a retryable MonitorError.
func IsRetryable(err error) bool {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.IsRetryable()
	}
	return false
}
