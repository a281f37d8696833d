// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"

	"github.com/xmidt-org/ident-agent/internal/mcp"
	"github.com/xmidt-org/ident-agent/internal/refresh"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type mcpIn struct {
	fx.In
	CLI         *CLI
	Logger      *zap.Logger
	LC          fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Coordinator *refresh.Coordinator
}

// mcpLifeCycle serves the tools over stdio when --mcp is given.  The
// application stops once the client goes away.
func mcpLifeCycle(in mcpIn) {
	if !in.CLI.MCP {
		return
	}

	logger := in.Logger.Named("mcp")
	server := mcp.NewServer(in.Coordinator, applicationName, version)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	in.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				logger.Info("serving on stdio")
				err := mcp.Run(ctx, server)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("server stopped", zap.Error(err))
				}

				if ctx.Err() == nil {
					if err := in.Shutdowner.Shutdown(); err != nil {
						logger.Error("shutdown failed", zap.Error(err))
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
