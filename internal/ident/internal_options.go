// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"fmt"
	"net/http"
	"net/url"
)

func stackVador() Option {
	return optionFunc(
		func(f *Fetcher) error {
			if !f.stack.Valid() {
				return fmt.Errorf("%w stack %q is not supported", ErrInvalidInput, string(f.stack))
			}
			return nil
		})
}

// endpointsVador fills in the default endpoints for the stack when none were
// given, then checks each one is an absolute http(s) URL.
func endpointsVador() Option {
	return optionFunc(
		func(f *Fetcher) error {
			if len(f.endpoints) == 0 {
				switch f.stack {
				case V4:
					f.endpoints = append(f.endpoints, DefaultV4Endpoints...)
				case V6:
					f.endpoints = append(f.endpoints, DefaultV6Endpoints...)
				}
			}

			for _, e := range f.endpoints {
				u, err := url.Parse(e)
				if err != nil {
					return fmt.Errorf("%w endpoint %q: %w", ErrInvalidInput, e, err)
				}
				if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
					return fmt.Errorf("%w endpoint %q is not an absolute http(s) URL", ErrInvalidInput, e)
				}
			}
			return nil
		})
}

// pinClient replaces the client with a copy whose transport only dials the
// fetcher's stack.  It must run after all other options.
func pinClient() Option {
	return optionFunc(
		func(f *Fetcher) error {
			var base *http.Transport

			switch rt := f.client.Transport.(type) {
			case nil:
				base = http.DefaultTransport.(*http.Transport)
			case *http.Transport:
				base = rt
			default:
				return fmt.Errorf("%w http client transport %T cannot be pinned", ErrInvalidInput, rt)
			}

			client := *f.client
			client.Transport = pinnedTransport(base, f.stack, f.resolver)
			f.client = &client
			return nil
		})
}
