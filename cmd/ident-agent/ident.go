// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/xmidt-org/ident-agent/internal/geo"
	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/ident/event"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	v4EndpointsKey = "ipv4"
	v6EndpointsKey = "ipv6"
)

type fetchersIn struct {
	fx.In
	ID       Identity
	Enricher *geo.Enricher `optional:"true"`
	Logger   *zap.Logger
}

type fetchersOut struct {
	fx.Out
	V4 *ident.Fetcher `name:"fetcher_v4"`
	V6 *ident.Fetcher `name:"fetcher_v6"`
}

// Options returns the options for the fetcher of the given stack.
func (in fetchersIn) Options(stack ident.Stack) ([]ident.Option, error) {
	logger := in.Logger.Named("ident")

	client, err := in.ID.HTTPClient.NewClient()
	if err != nil {
		return nil, err
	}

	key := v4EndpointsKey
	if stack == ident.V6 {
		key = v6EndpointsKey
	}

	opts := []ident.Option{
		ident.WithStack(stack),
		ident.HTTPClient(client),
		ident.UserAgent(in.ID.UserAgent),
		ident.AddFetchListener(event.FetchListenerFunc(
			func(e event.Fetch) {
				fields := []zap.Field{
					zap.String("stack", string(e.Stack)),
					zap.String("endpoint", e.Endpoint),
					zap.Time("at", e.At),
					zap.Duration("duration", e.Duration),
					zap.String("uuid", e.UUID.String()),
					zap.Int("status_code", e.StatusCode),
				}
				if e.Err != nil {
					logger.Warn("fetch failed", append(fields, zap.Error(e.Err))...)
					return
				}
				logger.Info("fetch", append(fields, zap.String("address", e.Address))...)
			})),
	}

	if endpoints := in.ID.Endpoints[key]; len(endpoints) > 0 {
		opts = append(opts, ident.Endpoints(endpoints...))
	}

	if in.Enricher.Enabled() {
		opts = append(opts, ident.Enrich(in.Enricher))
	}

	return opts, nil
}

func provideFetchers(in fetchersIn) (fetchersOut, error) {
	var out fetchersOut

	for _, stack := range []ident.Stack{ident.V4, ident.V6} {
		opts, err := in.Options(stack)
		if err != nil {
			return fetchersOut{}, err
		}

		f, err := ident.New(opts...)
		if err != nil {
			return fetchersOut{}, err
		}

		if stack == ident.V4 {
			out.V4 = f
		} else {
			out.V6 = f
		}
	}

	return out, nil
}
