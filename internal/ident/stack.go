// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"net"

	"github.com/xmidt-org/ident-agent/internal/ident/event"
)

// Stack is one of the two independent address families.  The value is the
// network name handed to the dialer.
type Stack string

const (
	V4 Stack = "tcp4"
	V6 Stack = "tcp6"
)

// Network returns the dialer network that pins connections to the stack.
func (s Stack) Network() string {
	return string(s)
}

// Valid reports whether s is V4 or V6.
func (s Stack) Valid() bool {
	return s == V4 || s == V6
}

// Matches reports whether ip belongs to the stack's address family.
func (s Stack) Matches(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if s == V4 {
		return ip.To4() != nil
	}
	return ip.To4() == nil && ip.To16() != nil
}

func (s Stack) String() string {
	return string(s.ToEvent())
}

func (s Stack) ToEvent() event.Stack {
	if s == V4 {
		return event.IPv4
	}
	return event.IPv6
}
