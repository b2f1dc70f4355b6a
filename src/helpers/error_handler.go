package helpers

import (
	"context"
	"fmt"
	"time"

	"feed-monitor/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MonitorError struct {
	Message string
	Cause   error
}

func (e *MonitorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MonitorError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ MonitorError }
type NetworkError struct{ MonitorError }
type TransportError struct{ MonitorError }
type SinkError struct{ MonitorError }

// DecodeError is returned when an inbound frame is not valid JSON.
// It is fatal to the ingestion loop.
type DecodeError struct {
	MonitorError
	Frame string
}

// -----------------------------------------------------------------------------

func NewDecodeError(frame string, cause error) *DecodeError {
	return &DecodeError{
		MonitorError: MonitorError{Message: "malformed frame", Cause: cause},
		Frame:        frame,
	}
}

func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{MonitorError{Message: message, Cause: cause}}
}

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{MonitorError{Message: message, Cause: cause}}
}

func NewSinkError(sink string, cause error) *SinkError {
	return &SinkError{MonitorError{Message: fmt.Sprintf("sink %s failed", sink), Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{MonitorError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// MaxRetryDelay bounds the wait between two attempts
const MaxRetryDelay = 30 * time.Second

// RetryWithBackoff attempts fn up to maxRetries times, doubling baseDelay after each
// failure up to MaxRetryDelay. The wait between attempts is interrupted by ctx.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func(attempt int) (interface{}, error)) (interface{}, error) {
	var lastErr error

	if maxRetries < 1 {
		maxRetries = 1
	}

	delay := min(baseDelay, MaxRetryDelay)
	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn(attempt)
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay = nextDelay(delay)
	}

	return nil, &MonitorError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}

func nextDelay(delay time.Duration) time.Duration {
	return min(delay*2, MaxRetryDelay)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Handle logs a non-nil error and counts it
func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.ErrorCount++
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
