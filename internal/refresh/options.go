// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"time"

	"github.com/xmidt-org/ident-agent/internal/refresh/event"
)

type optionFunc func(*Coordinator) error

var _ Option = optionFunc(nil)

func (f optionFunc) apply(c *Coordinator) error {
	return f(c)
}

type nilOptionFunc func(*Coordinator)

var _ Option = nilOptionFunc(nil)

func (f nilOptionFunc) apply(c *Coordinator) error {
	f(c)
	return nil
}

// Fetchers sets the IPv4 and IPv6 fetchers.
func Fetchers(v4, v6 Fetcher) Option {
	return nilOptionFunc(
		func(c *Coordinator) {
			c.v4 = v4
			c.v6 = v6
		})
}

// Interfaces sets the enumerator of local interface addresses.
func Interfaces(e Enumerator) Option {
	return nilOptionFunc(
		func(c *Coordinator) {
			c.enumerator = e
		})
}

// NowFunc is the function used to obtain the current time.
func NowFunc(nowFunc func() time.Time) Option {
	return nilOptionFunc(
		func(c *Coordinator) {
			if nowFunc == nil {
				nowFunc = time.Now
			}
			c.nowFunc = nowFunc
		})
}

// AddChangeListener adds a listener for change events.  If the optional
// cancel parameter is provided, it is set to a function that can be used to
// cancel the listener.
func AddChangeListener(listener event.ChangeListener, cancel ...*event.CancelListenerFunc) Option {
	return nilOptionFunc(
		func(c *Coordinator) {
			cncl := c.changeListeners.Add(listener)
			if len(cancel) > 0 && cancel[0] != nil {
				*cancel[0] = event.CancelListenerFunc(cncl)
			}
		})
}

// AddCompleteListener adds a listener for cycle complete events.  If the
// optional cancel parameter is provided, it is set to a function that can be
// used to cancel the listener.
//
// Stack completions and the cycle completion are delivered one at a time in
// the order they happened, so a listener may start a new cycle with Refresh
// but must not wait for it.
func AddCompleteListener(listener event.CompleteListener, cancel ...*event.CancelListenerFunc) Option {
	return nilOptionFunc(
		func(c *Coordinator) {
			cncl := c.completeListeners.Add(listener)
			if len(cancel) > 0 && cancel[0] != nil {
				*cancel[0] = event.CancelListenerFunc(cncl)
			}
		})
}
