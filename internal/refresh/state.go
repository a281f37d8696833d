// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"time"

	"github.com/google/uuid"
	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
)

// Phase is the coordinator's operational state.
type Phase string

const (
	Idle       Phase = "idle"
	Refreshing Phase = "refreshing"
)

// State is everything the coordinator knows about the latest refresh.
//
// V4 and V6 keep the last outcome of each stack and are not cleared when a
// new cycle starts, so a reader can see the previous result while the next
// one is in flight.
type State struct {
	Phase        Phase `json:"phase"`
	PendingCount int   `json:"pending"`

	V4 *ident.StackResult `json:"v4,omitempty"`
	V6 *ident.StackResult `json:"v6,omitempty"`

	LocalV4 []net.InterfaceAddress `json:"local_v4"`
	LocalV6 []net.InterfaceAddress `json:"local_v6"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Elapsed is the duration of the last completed cycle.
	Elapsed time.Duration `json:"elapsed"`

	Cycle uint64    `json:"cycle"`
	ID    uuid.UUID `json:"id"`
}

// Completed reports whether any cycle has completed.
func (s State) Completed() bool {
	return !s.CompletedAt.IsZero()
}

func (s State) clone() State {
	c := s

	if s.V4 != nil {
		r := s.V4.Clone()
		c.V4 = &r
	}
	if s.V6 != nil {
		r := s.V6.Clone()
		c.V6 = &r
	}

	c.LocalV4 = append([]net.InterfaceAddress{}, s.LocalV4...)
	c.LocalV6 = append([]net.InterfaceAddress{}, s.LocalV6...)

	return c
}
