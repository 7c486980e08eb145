package utils

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorCodeInvalidConfig      ErrorCode = "INVALID_CONFIG"
	ErrorCodeDownloaderMissing  ErrorCode = "DOWNLOADER_MISSING"
	ErrorCodeDownloadTimeout    ErrorCode = "DOWNLOAD_TIMEOUT"
	ErrorCodeDownloadCanceled   ErrorCode = "DOWNLOAD_CANCELED"
	ErrorCodeContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	ErrorCodeLoginRequired      ErrorCode = "LOGIN_REQUIRED"
	ErrorCodeUnsupportedURL     ErrorCode = "UNSUPPORTED_URL"
	ErrorCodeUnsupportedFormat  ErrorCode = "UNSUPPORTED_FORMAT"
	ErrorCodeNetworkError       ErrorCode = "NETWORK_ERROR"
	ErrorCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeNoMedia            ErrorCode = "NO_MEDIA"
	ErrorCodeSendFailed         ErrorCode = "SEND_FAILED"
	ErrorCodeArchiveFailed      ErrorCode = "ARCHIVE_FAILED"
)

// AppError is the structured error returned across service boundaries.
// Message is short and safe to show to a chat user; Details and Err carry
// the diagnostics that only go to the log.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail sets a diagnostic detail and returns the error for chaining.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

func NewErrorWithDetails(code ErrorCode, message string, err error, details map[string]interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Err:     err,
	}
}

// AsAppError unwraps err to an *AppError if there is one in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common error constructors
func NewDownloaderMissingError(path string, err error) *AppError {
	return NewErrorWithDetails(
		ErrorCodeDownloaderMissing,
		"downloader is not installed",
		err,
		map[string]interface{}{"path": path},
	)
}

func NewDownloadTimeoutError(err error) *AppError {
	return NewError(ErrorCodeDownloadTimeout, "download timed out", err)
}

func NewDownloadCanceledError(err error) *AppError {
	return NewError(ErrorCodeDownloadCanceled, "download was canceled", err)
}

func NewNoMediaError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeNoMedia,
		"no video was found at this link (it may exceed the size limit)",
		nil,
		map[string]interface{}{"link": link},
	)
}

func NewSendError(err error) *AppError {
	return NewError(ErrorCodeSendFailed, "failed to send the video", err)
}

func NewArchiveError(key string, err error) *AppError {
	return NewErrorWithDetails(
		ErrorCodeArchiveFailed,
		"failed to archive the video",
		err,
		map[string]interface{}{"key": key},
	)
}
