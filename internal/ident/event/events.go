// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stack is the address family a fetch was pinned to.
type Stack string

const (
	IPv4 Stack = "IPv4"
	IPv6 Stack = "IPv6"
)

// CancelListenerFunc is the interface that provides a method to cancel
// a listener.
type CancelListenerFunc func()

// Fetch is the event that is sent after each attempt to fetch an identity
// record from an endpoint.
type Fetch struct {
	// Stack is the address family the request was pinned to.
	Stack Stack

	// Endpoint is the URL that was requested.
	Endpoint string

	// At holds the time when the fetch request was made.
	At time.Time

	// Duration is the time waited for the response.
	Duration time.Duration

	// UUID is the UUID of the request.
	UUID uuid.UUID

	// StatusCode is the status code returned from the endpoint.  Zero if the
	// endpoint was never reached.
	StatusCode int

	// Address is the address reported by the endpoint on success.
	Address string

	// Err is the error that ended the attempt, if any.
	Err error
}

func (f Fetch) String() string {
	var buf strings.Builder
	buf.WriteString("Fetch{\n")
	fmt.Fprintf(&buf, "  Stack:      %s\n", string(f.Stack))
	fmt.Fprintf(&buf, "  Endpoint:   %s\n", f.Endpoint)
	fmt.Fprintf(&buf, "  At:         %s (%s)\n", f.At.Format(time.RFC3339Nano), f.Duration)
	fmt.Fprintf(&buf, "  UUID:       %s\n", f.UUID)
	if f.StatusCode != 0 {
		fmt.Fprintf(&buf, "  StatusCode: %d\n", f.StatusCode)
	}
	if f.Address != "" {
		fmt.Fprintf(&buf, "  Address:    %s\n", f.Address)
	}
	if f.Err != nil {
		fmt.Fprintf(&buf, "  Err:        %s\n", f.Err)
	}
	buf.WriteString("}")

	return buf.String()
}

// FetchListener is the interface that must be implemented by types that
// want to receive Fetch notifications.
type FetchListener interface {
	OnFetch(Fetch)
}

// FetchListenerFunc is a function type that implements FetchListener.
// It can be used as an adapter for functions that need to implement the
// FetchListener interface.
type FetchListenerFunc func(Fetch)

func (f FetchListenerFunc) OnFetch(e Fetch) {
	f(e)
}
