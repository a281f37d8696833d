// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/xmidt-org/ident-agent/internal/net"
	"github.com/xmidt-org/ident-agent/internal/net/event"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type networkServiceIn struct {
	fx.In
	Interfaces Interfaces
	Logger     *zap.Logger
}

type networkServiceOptionsOut struct {
	fx.Out
	Options []net.Option `group:"network_service_options,flatten"`
}

func (in networkServiceIn) Options() []net.Option {
	logger := in.Logger.Named("interfaces")

	opts := []net.Option{
		net.AddEnumerateListener(event.EnumerateListenerFunc(
			func(e event.Enumerate) {
				if e.Err != nil {
					logger.Warn("enumerate failed",
						zap.Duration("duration", e.Duration),
						zap.Error(e.Err),
					)
					return
				}
				if e.Skipped != nil {
					logger.Warn("some interfaces skipped", zap.Error(e.Skipped))
				}
				logger.Debug("enumerate",
					zap.Time("at", e.At),
					zap.Duration("duration", e.Duration),
					zap.Int("seen", e.Seen),
					zap.Int("v4", e.V4),
					zap.Int("v6", e.V6),
				)
			})),
	}

	if in.Interfaces.ExcludeVirtual {
		opts = append(opts, net.ExcludeVirtual(in.Interfaces.VirtualPrefixes...))
	}

	return opts
}

// provideNetworkServiceOptions feeds net.NetworkServiceModule.
func provideNetworkServiceOptions(in networkServiceIn) networkServiceOptionsOut {
	return networkServiceOptionsOut{Options: in.Options()}
}
