// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/xmidt-org/ident-agent/internal/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type geoIn struct {
	fx.In
	Geo    Geo
	LC     fx.Lifecycle
	Logger *zap.Logger
}

// provideEnricher opens the configured GeoLite2 databases.  With none
// configured the enricher is returned disabled.
func provideEnricher(in geoIn) (*geo.Enricher, error) {
	logger := in.Logger.Named("geo")

	e, err := geo.Open(in.Geo.CityDatabase, in.Geo.ASNDatabase)
	if err != nil {
		return nil, err
	}

	if !e.Enabled() {
		logger.Debug("no geo databases configured")
		return e, nil
	}

	e.OnError(func(err error) {
		logger.Debug("lookup failed", zap.Error(err))
	})

	in.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return e.Close()
		},
	})

	return e, nil
}
