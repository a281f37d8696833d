// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package net

import (
	"fmt"
	"strings"
	"time"

	"github.com/xmidt-org/ident-agent/internal/net/event"
)

type optionFunc func(*NetworkService) error

var _ Option = optionFunc(nil)

func (f optionFunc) apply(ns *NetworkService) error {
	return f(ns)
}

type nilOptionFunc func(*NetworkService)

var _ Option = nilOptionFunc(nil)

func (f nilOptionFunc) apply(ns *NetworkService) error {
	f(ns)
	return nil
}

// ExcludeVirtual drops the addresses of interfaces whose name starts with one
// of the prefixes.  With no prefixes DefaultVirtualPrefixes is used.
func ExcludeVirtual(prefixes ...string) Option {
	return optionFunc(
		func(ns *NetworkService) error {
			if len(prefixes) == 0 {
				prefixes = DefaultVirtualPrefixes
			}

			ns.virtualPrefixes = ns.virtualPrefixes[:0]
			for _, p := range prefixes {
				p = strings.TrimSpace(p)
				if p == "" {
					return fmt.Errorf("%w empty virtual interface prefix", ErrInvalidInput)
				}
				ns.virtualPrefixes = append(ns.virtualPrefixes, p)
			}
			return nil
		})
}

// NowFunc is the function used to obtain the current time.
func NowFunc(nowFunc func() time.Time) Option {
	return nilOptionFunc(
		func(ns *NetworkService) {
			if nowFunc == nil {
				nowFunc = time.Now
			}
			ns.nowFunc = nowFunc
		})
}

// AddEnumerateListener adds a listener for enumerate events.  If the optional
// cancel parameter is provided, it is set to a function that can be used to
// cancel the listener.
func AddEnumerateListener(listener event.EnumerateListener, cancel ...*event.CancelListenerFunc) Option {
	return nilOptionFunc(
		func(ns *NetworkService) {
			cncl := ns.enumerateListeners.Add(listener)
			if len(cancel) > 0 && cancel[0] != nil {
				*cancel[0] = event.CancelListenerFunc(cncl)
			}
		})
}
