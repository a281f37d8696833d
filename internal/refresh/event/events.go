// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"time"

	"github.com/google/uuid"
)

// CancelListenerFunc is the interface that provides a method to cancel
// a listener.
type CancelListenerFunc func()

// ChangeKind describes what part of the refresh state changed.
type ChangeKind string

const (
	// Started is sent when a refresh cycle begins.
	Started ChangeKind = "started"

	// LocalUpdated is sent when the local address lists were replaced.
	LocalUpdated ChangeKind = "local-updated"

	// LocalFailed is sent when the local addresses could not be listed.  The
	// previous lists are kept.
	LocalFailed ChangeKind = "local-failed"

	// StackCompleted is sent when one stack's fetch has finished.
	StackCompleted ChangeKind = "stack-completed"
)

// Change is the event sent each time the refresh state changes.
type Change struct {
	Kind ChangeKind

	// Cycle and ID identify the refresh cycle.
	Cycle uint64
	ID    uuid.UUID

	// At is when the change was made.
	At time.Time

	// Stack is set for StackCompleted changes ("IPv4" or "IPv6").
	Stack string

	// Pending is the number of fetches still outstanding after the change.
	Pending int

	// Err is the failure for LocalFailed and failed StackCompleted changes.
	Err error
}

// ChangeListener is the interface that must be implemented by types that
// want to receive Change notifications.
type ChangeListener interface {
	OnChange(Change)
}

// ChangeListenerFunc is a function type that implements ChangeListener.
type ChangeListenerFunc func(Change)

func (f ChangeListenerFunc) OnChange(c Change) {
	f(c)
}

// Complete is the event sent exactly once per refresh cycle, when both
// fetches have finished.
type Complete struct {
	Cycle uint64
	ID    uuid.UUID

	StartedAt   time.Time
	CompletedAt time.Time
	Elapsed     time.Duration

	// V4Address and V6Address are the public addresses found, empty on
	// failure.
	V4Address string
	V6Address string

	// V4Err and V6Err hold the failure messages, empty on success.
	V4Err string
	V6Err string
}

// CompleteListener is the interface that must be implemented by types that
// want to receive Complete notifications.
type CompleteListener interface {
	OnComplete(Complete)
}

// CompleteListenerFunc is a function type that implements CompleteListener.
type CompleteListenerFunc func(Complete)

func (f CompleteListenerFunc) OnComplete(c Complete) {
	f(c)
}
