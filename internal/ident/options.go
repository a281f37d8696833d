// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/xmidt-org/ident-agent/internal/ident/event"
)

type optionFunc func(*Fetcher) error

var _ Option = optionFunc(nil)

func (f optionFunc) apply(c *Fetcher) error {
	return f(c)
}

type nilOptionFunc func(*Fetcher)

var _ Option = nilOptionFunc(nil)

func (f nilOptionFunc) apply(c *Fetcher) error {
	f(c)
	return nil
}

// WithStack sets the stack the fetcher is pinned to.  If no endpoints have
// been provided the defaults for the stack are used.
func WithStack(stack Stack) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			f.stack = stack
		})
}

// Endpoints sets the ordered list of endpoints.  The first is the primary,
// the rest are mirrors tried only when the previous one is unreachable.
// Blank entries are ignored.
func Endpoints(endpoints ...string) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			f.endpoints = f.endpoints[:0]
			for _, e := range endpoints {
				if e = strings.TrimSpace(e); e != "" {
					f.endpoints = append(f.endpoints, e)
				}
			}
		})
}

// HTTPClient is the HTTP client used to fetch the record.  Its transport is
// copied and pinned to the fetcher's stack; the client passed in is not
// modified.
func HTTPClient(client *http.Client) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			if client == nil {
				client = http.DefaultClient
			}
			f.client = client
		})
}

// UserAgent is the User-Agent header sent with each request.
func UserAgent(ua string) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			if ua == "" {
				ua = DefaultUserAgent
			}
			f.userAgent = ua
		})
}

// UseResolver sets the resolver used to find the endpoint's addresses.  The
// default is net.DefaultResolver.
func UseResolver(r Resolver) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			if r == nil {
				r = net.DefaultResolver
			}
			f.resolver = r
		})
}

// Enrich sets an enricher that is given every successfully decoded record.
func Enrich(e Enricher) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			f.enricher = e
		})
}

// NowFunc is the function used to obtain the current time.
func NowFunc(nowFunc func() time.Time) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			if nowFunc == nil {
				nowFunc = time.Now
			}
			f.nowFunc = nowFunc
		})
}

// AddFetchListener adds a listener for fetch events.  If the optional cancel
// parameter is provided, it is set to a function that can be used to cancel
// the listener.
func AddFetchListener(listener event.FetchListener, cancel ...*event.CancelListenerFunc) Option {
	return nilOptionFunc(
		func(f *Fetcher) {
			cncl := f.fetchListeners.Add(listener)
			if len(cancel) > 0 && cancel[0] != nil {
				*cancel[0] = event.CancelListenerFunc(cncl)
			}
		})
}
