package util

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"
)

// RetryConfig controls how often and how patiently an operation is retried
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration // doubled after every failed attempt
	MaxWait     time.Duration

	// Retryable classifies errors; nil means IsRetryableError
	Retryable func(error) bool
}

// DefaultRetryConfig suits file creation and other filesystem calls
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     5 * time.Second,
	}
}

// StoreRetryConfig returns retry config for state database writes. Only lock
// conflicts with another mnb process are retried.
func StoreRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 5,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Retryable:   IsLockError,
	}
}

var sleep = time.Sleep

var lockPatterns = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"sqlite_locked",
}

var transientPatterns = []string{
	"timeout",
	"timed out",
	"resource temporarily unavailable",
	"i/o error",
}

// IsLockError reports whether err is SQLite refusing a write because another
// connection holds the lock
func IsLockError(err error) bool {
	return err != nil && containsAny(strings.ToLower(err.Error()), lockPatterns)
}

// IsRetryableError reports whether err is a lock conflict or a transient
// filesystem failure
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if IsLockError(err) {
		return true
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT, syscall.EIO:
			return true
		}
	}
	return containsAny(strings.ToLower(err.Error()), transientPatterns)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// RetryWithBackoff runs operation until it succeeds, fails with an error the
// config does not consider retryable, or runs out of attempts
func RetryWithBackoff[T any](cfg *RetryConfig, operation func() (T, error), operationName string) (T, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsRetryableError
	}

	wait := cfg.InitialWait
	for attempt := 1; ; attempt++ {
		result, err := operation()
		switch {
		case err == nil:
			if attempt > 1 {
				DebugLog("%s succeeded on attempt %d", operationName, attempt)
			}
			return result, nil
		case !retryable(err):
			return result, err
		case attempt >= cfg.MaxAttempts:
			WarnLog("%s still failing after %d attempts: %v", operationName, attempt, err)
			return result, fmt.Errorf("%s: gave up after %d attempts: %w", operationName, attempt, err)
		}

		DebugLog("%s failed (attempt %d/%d), next try in %v: %v", operationName, attempt, cfg.MaxAttempts, wait, err)
		sleep(wait)
		wait = min(wait*2, cfg.MaxWait)
	}
}

// Retry is RetryWithBackoff for operations without a result
func Retry(cfg *RetryConfig, operation func() error, operationName string) error {
	_, err := RetryWithBackoff(cfg, func() (struct{}, error) {
		return struct{}{}, operation()
	}, operationName)
	return err
}

// RetryableCreate creates path, retrying transient failures
func RetryableCreate(path string, cfg *RetryConfig) (*os.File, error) {
	return RetryWithBackoff(cfg, func() (*os.File, error) {
		return os.Create(path)
	}, "create "+path)
}
