// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes refresh and the current state as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/xmidt-org/ident-agent/internal/refresh"
)

// refreshTimeout bounds a refresh made through a tool call.
const refreshTimeout = 30 * time.Second

// Coordinator is the part of *refresh.Coordinator the tools use.
type Coordinator interface {
	RefreshAndWait(context.Context) error
	Wait(context.Context) error
	Snapshot() refresh.State
	FetchedSummary() (string, bool)
}

type tools struct {
	c Coordinator
}

// NewServer returns an MCP server with the refresh and state tools.
func NewServer(c Coordinator, name, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	t := tools{c: c}

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "refresh",
		Description: "Look up the public IPv4 and IPv6 identity and the local interface addresses, then return the result",
	}, t.refresh)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "state",
		Description: "Return the result of the latest lookup without starting a new one",
	}, t.state)

	return server
}

// Run serves the tools over stdio until ctx is done or the client goes away.
func Run(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func (t tools) refresh(ctx context.Context, _ *mcpsdk.CallToolRequest, input RefreshInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	err := t.c.RefreshAndWait(ctx)
	if errors.Is(err, refresh.ErrRefreshInProgress) && input.Join {
		err = t.c.Wait(ctx)
	}
	if err != nil {
		return nil, StateOutput{}, err
	}

	return t.result()
}

func (t tools) state(_ context.Context, _ *mcpsdk.CallToolRequest, _ StateInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return t.result()
}

func (t tools) result() (*mcpsdk.CallToolResult, StateOutput, error) {
	fetched, _ := t.c.FetchedSummary()
	out := toStateOutput(t.c.Snapshot(), fetched)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: out.Report},
		},
	}, out, nil
}
