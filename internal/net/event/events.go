// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

import "time"

// CancelListenerFunc is the interface that provides a method to cancel
// a listener.
type CancelListenerFunc func()

// Enumerate is the event that is sent after each pass over the local
// interface table.
type Enumerate struct {
	// At holds the time when the enumeration started.
	At time.Time

	// Duration is the time the enumeration took.
	Duration time.Duration

	// Seen is the number of raw address entries returned by the OS.
	Seen int

	// V4 and V6 are the number of addresses kept per family.
	V4 int
	V6 int

	// Err is the error returned when the OS query failed.
	Err error

	// Skipped holds the errors of the interfaces that could not be read.
	// The enumeration still succeeds with the other interfaces.
	Skipped error
}

// EnumerateListener is the interface that must be implemented by types that
// want to receive Enumerate notifications.
type EnumerateListener interface {
	OnEnumerate(Enumerate)
}

// EnumerateListenerFunc is a function type that implements EnumerateListener.
type EnumerateListenerFunc func(Enumerate)

func (f EnumerateListenerFunc) OnEnumerate(e Enumerate) {
	f(e)
}
