package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph model errors (bad edges, bad input)
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeStore represents persistence layer errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypePublish represents object storage upload errors
	ErrorTypePublish ErrorType = "publish"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeDiscord represents Discord-related errors
	ErrorTypeDiscord ErrorType = "discord"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrInvalidEdge is returned when an edge would connect a user to themselves
type ErrInvalidEdge struct {
	*BaseError
	UserID string
}

func NewInvalidEdge(userID string) *ErrInvalidEdge {
	return &ErrInvalidEdge{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("cannot connect a user to themselves: %s", userID), nil),
		UserID:    userID,
	}
}

// Store Errors

// ErrStoreUnavailable is returned when the persistence layer is unreachable
// or times out. Callers must assume the write did not commit.
type ErrStoreUnavailable struct {
	*BaseError
	Op string
}

func NewStoreUnavailable(op string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store unavailable during %s", op), err),
		Op:        op,
	}
}

// Publish Errors

// ErrPublishFailed is returned when uploading an artifact to object storage
// fails (auth, network, or size limits). Graph state is unaffected.
type ErrPublishFailed struct {
	*BaseError
	Object string
}

func NewPublishFailed(object string, err error) *ErrPublishFailed {
	return &ErrPublishFailed{
		BaseError: NewBaseError(ErrorTypePublish, fmt.Sprintf("failed to publish %s", object), err),
		Object:    object,
	}
}

// Config Errors

// ErrNotConfigured is returned when a graph command runs before a tracking
// channel has been set for the guild
type ErrNotConfigured struct {
	*BaseError
	GuildID string
}

func NewNotConfigured(guildID string) *ErrNotConfigured {
	return &ErrNotConfigured{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("no tracking channel configured for guild %s", guildID), nil),
		GuildID:   guildID,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Discord Errors

// ErrDiscordSendFailed is returned when sending a Discord message fails
type ErrDiscordSendFailed struct {
	*BaseError
	ChannelID string
}

func NewDiscordSendFailed(channelID string, err error) *ErrDiscordSendFailed {
	return &ErrDiscordSendFailed{
		BaseError: NewBaseError(ErrorTypeDiscord, "failed to send message", err),
		ChannelID: channelID,
	}
}

// Helper functions

// Category exposes the error's type; promoted to every wrapper that embeds
// BaseError, so IsErrorType sees through the concrete types.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// IsErrorType checks if an error belongs to a specific category
func IsErrorType(err error, errType ErrorType) bool {
	var categorized interface{ Category() ErrorType }
	if stderrors.As(err, &categorized) {
		return categorized.Category() == errType
	}
	return false
}

// IsInvalidEdge reports whether err is a self-loop rejection
func IsInvalidEdge(err error) bool {
	var target *ErrInvalidEdge
	return stderrors.As(err, &target)
}

// IsStoreUnavailable reports whether err is a persistence failure
func IsStoreUnavailable(err error) bool {
	var target *ErrStoreUnavailable
	if stderrors.As(err, &target) {
		return true
	}
	return IsErrorType(err, ErrorTypeStore)
}

// IsNotConfigured reports whether err means no tracking channel is set
func IsNotConfigured(err error) bool {
	var target *ErrNotConfigured
	return stderrors.As(err, &target)
}

// IsRetryable checks if an error is worth retrying. Store and publish
// failures are transient by contract; everything else is not.
func IsRetryable(err error) bool {
	return IsErrorType(err, ErrorTypeStore) || IsErrorType(err, ErrorTypePublish)
}
