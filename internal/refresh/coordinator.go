// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xmidt-org/eventor"
	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
	"github.com/xmidt-org/ident-agent/internal/refresh/event"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// SummaryLayout is the time layout used by FetchedSummary.
const SummaryLayout = "January 2, 2006 at 3:04:05 PM"

// Fetcher fetches the public identity on one stack.
type Fetcher interface {
	Fetch(context.Context) ident.StackResult
}

// Enumerator lists the local interface addresses.
type Enumerator interface {
	Enumerate() (v4, v6 []net.InterfaceAddress, err error)
}

// Coordinator runs refresh cycles: one local enumeration and two concurrent
// fetches, joined into a single State.
type Coordinator struct {
	m     sync.Mutex
	state State
	idle  chan struct{}

	// completions orders the dispatch of the events raised by complete.
	completions sequencer

	v4         Fetcher
	v6         Fetcher
	enumerator Enumerator
	nowFunc    func() time.Time

	changeListeners   eventor.Eventor[event.ChangeListener]
	completeListeners eventor.Eventor[event.CompleteListener]
}

// Option is the interface implemented by types that can be used to
// configure the coordinator.
type Option interface {
	apply(*Coordinator) error
}

// New creates a Coordinator in the Idle phase.
func New(opts ...Option) (*Coordinator, error) {
	vadors := []Option{
		fetchersVador(),
		enumeratorVador(),
	}

	c := Coordinator{
		idle:    make(chan struct{}),
		nowFunc: time.Now,
		state: State{
			Phase:   Idle,
			LocalV4: []net.InterfaceAddress{},
			LocalV6: []net.InterfaceAddress{},
		},
	}
	close(c.idle)

	opts = append(opts, vadors...)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt.apply(&c)
		if err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// Refresh starts a new cycle and returns once both fetches are running.
// The fetches are bound to ctx.  ErrRefreshInProgress is returned, and
// nothing changes, if a cycle is already running.
func (c *Coordinator) Refresh(ctx context.Context) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	c.m.Lock()
	if c.state.Phase == Refreshing {
		c.m.Unlock()
		return ErrRefreshInProgress
	}

	c.state.Phase = Refreshing
	c.state.StartedAt = c.nowFunc()
	c.state.PendingCount = 2
	c.state.Cycle++
	c.state.ID = id
	c.idle = make(chan struct{})

	started := event.Change{
		Kind:    event.Started,
		Cycle:   c.state.Cycle,
		ID:      id,
		At:      c.state.StartedAt,
		Pending: 2,
	}
	c.m.Unlock()

	c.dispatch(started)
	c.enumerate(started.Cycle, id)

	go func() {
		c.complete(ident.V4, c.v4.Fetch(ctx))
	}()
	go func() {
		c.complete(ident.V6, c.v6.Fetch(ctx))
	}()

	return nil
}

// RefreshAndWait starts a new cycle and waits until it completes or ctx is
// done.
func (c *Coordinator) RefreshAndWait(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	return c.Wait(ctx)
}

// Wait blocks until the coordinator is Idle or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.m.Lock()
	idle := c.idle
	c.m.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a deep copy of the current state.  It may be taken in the
// middle of a cycle.
func (c *Coordinator) Snapshot() State {
	c.m.Lock()
	defer c.m.Unlock()

	return c.state.clone()
}

// FetchedSummary describes when the last cycle completed and how long it
// took, e.g. "March 4, 2025 at 1:02:03 PM (0.532s)".  It returns false if no
// cycle has completed.
func (c *Coordinator) FetchedSummary() (string, bool) {
	c.m.Lock()
	completedAt, elapsed := c.state.CompletedAt, c.state.Elapsed
	c.m.Unlock()

	if completedAt.IsZero() {
		return "", false
	}

	return fmt.Sprintf("%s (%.3fs)", completedAt.Format(SummaryLayout), elapsed.Seconds()), true
}

// enumerate replaces the local address lists.  On failure the previous lists
// are kept.
func (c *Coordinator) enumerate(cycle uint64, id uuid.UUID) {
	v4, v6, err := c.enumerator.Enumerate()

	ch := event.Change{
		Kind:  event.LocalUpdated,
		Cycle: cycle,
		ID:    id,
		Err:   err,
	}

	c.m.Lock()
	if err == nil {
		c.state.LocalV4 = append([]net.InterfaceAddress{}, v4...)
		c.state.LocalV6 = append([]net.InterfaceAddress{}, v6...)
	} else {
		ch.Kind = event.LocalFailed
	}
	ch.At = c.nowFunc()
	ch.Pending = c.state.PendingCount
	c.m.Unlock()

	c.dispatch(ch)
}

// complete records the result of one stack's fetch.  It is the only place
// PendingCount is decremented; a completion that arrives when nothing is
// pending is ignored.
func (c *Coordinator) complete(stack ident.Stack, result ident.StackResult) {
	c.m.Lock()
	if c.state.PendingCount == 0 {
		c.m.Unlock()
		return
	}

	r := result.Clone()
	if stack == ident.V4 {
		c.state.V4 = &r
	} else {
		c.state.V6 = &r
	}
	c.state.PendingCount--

	ch := event.Change{
		Kind:    event.StackCompleted,
		Cycle:   c.state.Cycle,
		ID:      c.state.ID,
		At:      c.nowFunc(),
		Stack:   stack.String(),
		Pending: c.state.PendingCount,
	}
	if !r.OK() {
		ch.Err = errors.New(r.ErrorMessage)
	}

	turn := c.completions.take()

	var done *event.Complete
	var idle chan struct{}
	if c.state.PendingCount == 0 {
		c.state.CompletedAt = ch.At
		c.state.Elapsed = c.state.CompletedAt.Sub(c.state.StartedAt)
		c.state.Phase = Idle
		idle = c.idle

		done = &event.Complete{
			Cycle:       c.state.Cycle,
			ID:          c.state.ID,
			StartedAt:   c.state.StartedAt,
			CompletedAt: c.state.CompletedAt,
			Elapsed:     c.state.Elapsed,
		}
		done.V4Address, done.V4Err = outcome(c.state.V4)
		done.V6Address, done.V6Err = outcome(c.state.V6)
	}
	c.m.Unlock()

	c.completions.wait(turn)
	defer c.completions.next()

	c.dispatch(ch)
	if done != nil {
		c.dispatch(*done)
		close(idle)
	}
}

// sequencer hands out turns in the order they are taken and lets each turn
// run only after every earlier one has finished.
type sequencer struct {
	m     sync.Mutex
	cond  sync.Cond
	taken uint64
	turn  uint64
}

func (s *sequencer) take() uint64 {
	s.m.Lock()
	defer s.m.Unlock()

	if s.cond.L == nil {
		s.cond.L = &s.m
	}

	t := s.taken
	s.taken++
	return t
}

func (s *sequencer) wait(t uint64) {
	s.m.Lock()
	defer s.m.Unlock()

	for s.turn != t {
		s.cond.Wait()
	}
}

func (s *sequencer) next() {
	s.m.Lock()
	s.turn++
	s.m.Unlock()

	s.cond.Broadcast()
}

func outcome(r *ident.StackResult) (addr, msg string) {
	if r == nil {
		return "", ""
	}
	if r.Record != nil {
		return r.Record.Address, ""
	}
	return "", r.ErrorMessage
}

// dispatch sends the event to the listeners.  It must not be called with the
// lock held.
func (c *Coordinator) dispatch(evnt any) {
	switch evnt := evnt.(type) {
	case event.Change:
		c.changeListeners.Visit(func(listener event.ChangeListener) {
			listener.OnChange(evnt)
		})
		return
	case event.Complete:
		c.completeListeners.Visit(func(listener event.CompleteListener) {
			listener.OnComplete(evnt)
		})
		return
	}

	panic("unknown event type")
}
