// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
	"github.com/xmidt-org/ident-agent/internal/refresh"
	"github.com/xmidt-org/ident-agent/internal/refresh/event"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type coordinatorIn struct {
	fx.In
	V4         *ident.Fetcher `name:"fetcher_v4"`
	V6         *ident.Fetcher `name:"fetcher_v6"`
	Interfaces *net.NetworkService
	Logger     *zap.Logger
}

func (in coordinatorIn) Options() []refresh.Option {
	logger := in.Logger.Named("refresh")

	return []refresh.Option{
		refresh.Fetchers(in.V4, in.V6),
		refresh.Interfaces(in.Interfaces),
		refresh.AddChangeListener(event.ChangeListenerFunc(
			func(c event.Change) {
				fields := []zap.Field{
					zap.String("kind", string(c.Kind)),
					zap.Uint64("cycle", c.Cycle),
					zap.String("id", c.ID.String()),
					zap.Int("pending", c.Pending),
				}
				if c.Stack != "" {
					fields = append(fields, zap.String("stack", c.Stack))
				}
				if c.Err != nil {
					fields = append(fields, zap.Error(c.Err))
				}
				logger.Debug("change", fields...)
			})),
		refresh.AddCompleteListener(event.CompleteListenerFunc(
			func(c event.Complete) {
				logger.Info("refresh complete",
					zap.Uint64("cycle", c.Cycle),
					zap.String("id", c.ID.String()),
					zap.Time("started_at", c.StartedAt),
					zap.Duration("elapsed", c.Elapsed),
					zap.String("v4_address", c.V4Address),
					zap.String("v6_address", c.V6Address),
					zap.String("v4_error", c.V4Err),
					zap.String("v6_error", c.V6Err),
				)
			})),
	}
}

func provideCoordinator(in coordinatorIn) (*refresh.Coordinator, error) {
	return refresh.New(in.Options()...)
}

type LifeCycleIn struct {
	fx.In
	CLI         *CLI
	Refresh     Refresh
	Logger      *zap.Logger
	LC          fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Coordinator *refresh.Coordinator
}

// runner drives the refresh cycles the program starts on its own: the one
// at startup, the --once cycle and the ones asked for with SIGHUP.
type runner struct {
	c          *refresh.Coordinator
	cfg        Refresh
	logger     *zap.Logger
	shutdowner fx.Shutdowner
	out        io.Writer
	signals    chan os.Signal
	done       chan struct{}
}

// cycle runs one refresh and waits for it, bounded by the configured timeout.
func (r *runner) cycle() error {
	ctx := context.Background()
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	return r.c.RefreshAndWait(ctx)
}

// once refreshes, writes the report and asks the application to stop.
func (r *runner) once() {
	err := r.cycle()
	if err != nil {
		r.logger.Error("refresh failed", zap.Error(err))
	}

	fmt.Fprint(r.out, r.c.Snapshot().Report())

	if err = r.shutdowner.Shutdown(); err != nil {
		r.logger.Error("shutdown failed", zap.Error(err))
	}
}

func (r *runner) background() {
	if err := r.cycle(); err != nil && !errors.Is(err, refresh.ErrRefreshInProgress) {
		r.logger.Warn("refresh failed", zap.Error(err))
	}
}

// watch starts a refresh for each SIGHUP until stop is called.
func (r *runner) watch() {
	signal.Notify(r.signals, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-r.done:
				return
			case <-r.signals:
				r.logger.Info("refresh requested")
				go r.background()
			}
		}
	}()
}

func (r *runner) stop() {
	signal.Stop(r.signals)
	close(r.done)
}

func onStart(run *runner, cli *CLI, logger *zap.Logger) func(context.Context) error {
	logger = logger.Named("on_start")

	return func(context.Context) error {
		defer func() {
			if r := recover(); nil != r {
				logger.Error("stacktrace from panic", zap.String("stacktrace", string(debug.Stack())), zap.Any("panic", r))
			}
		}()

		if cli.Once {
			go run.once()
			return nil
		}

		run.watch()

		if run.cfg.OnStart {
			go run.background()
		}

		return nil
	}
}

func onStop(run *runner, cli *CLI, logger *zap.Logger) func(context.Context) error {
	logger = logger.Named("on_stop")

	return func(context.Context) error {
		defer func() {
			if r := recover(); nil != r {
				logger.Error("stacktrace from panic", zap.String("stacktrace", string(debug.Stack())), zap.Any("panic", r))
			}
		}()

		if !cli.Once {
			run.stop()
		}

		return nil
	}
}

func lifeCycle(in LifeCycleIn) {
	logger := in.Logger.Named("fx_lifecycle")

	run := &runner{
		c:          in.Coordinator,
		cfg:        in.Refresh,
		logger:     in.Logger.Named("refresh"),
		shutdowner: in.Shutdowner,
		out:        os.Stdout,
		signals:    make(chan os.Signal, 1),
		done:       make(chan struct{}),
	}

	in.LC.Append(
		fx.Hook{
			OnStart: onStart(run, in.CLI, logger),
			OnStop:  onStop(run, in.CLI, logger),
		},
	)
}
