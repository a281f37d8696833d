// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/ident-agent/internal/geo"
	"github.com/xmidt-org/ident-agent/internal/ident"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_fetchersIn_Options(t *testing.T) {
	tests := []struct {
		description string
		in          fetchersIn
		stack       ident.Stack
		endpoints   []string
	}{
		{
			description: "built-in endpoints",
			stack:       ident.V4,
			endpoints:   ident.DefaultV4Endpoints,
		}, {
			description: "built-in v6 endpoints",
			stack:       ident.V6,
			endpoints:   ident.DefaultV6Endpoints,
		}, {
			description: "configured endpoints",
			in: fetchersIn{
				ID: Identity{
					Endpoints: map[string][]string{
						v4EndpointsKey: {"http://a.example/json", "http://b.example/json"},
						v6EndpointsKey: {"http://c.example/json"},
					},
				},
			},
			stack:     ident.V6,
			endpoints: []string{"http://c.example/json"},
		}, {
			description: "disabled enricher",
			in: fetchersIn{
				Enricher: geo.New(nil, nil),
			},
			stack:     ident.V4,
			endpoints: ident.DefaultV4Endpoints,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			tc.in.Logger = zap.NewNop()

			opts, err := tc.in.Options(tc.stack)
			require.NoError(err)

			f, err := ident.New(opts...)
			require.NoError(err)
			require.NotNil(f)

			assert.Equal(tc.stack, f.Stack())
			assert.Equal(tc.endpoints, f.Endpoints())
		})
	}
}

func Test_provideFetchers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ip":"127.0.0.1"}`))
	}))
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)

	out, err := provideFetchers(fetchersIn{
		ID: Identity{
			Endpoints: map[string][]string{
				v4EndpointsKey: {server.URL},
				v6EndpointsKey: {server.URL},
			},
		},
		Logger: zap.New(core),
	})
	require.NoError(err)
	require.NotNil(out.V4)
	require.NotNil(out.V6)
	assert.Equal(ident.V4, out.V4.Stack())
	assert.Equal(ident.V6, out.V6.Stack())

	got := out.V4.Fetch(context.Background())
	require.True(got.OK(), got.ErrorMessage)
	assert.Equal("127.0.0.1", got.Record.Address)

	// The test server listens on an IPv4 literal.
	got = out.V6.Fetch(context.Background())
	assert.False(got.OK())
	assert.NotEmpty(got.ErrorMessage)

	entries := logs.AllUntimed()
	require.Len(entries, 2)

	assert.Equal(zap.InfoLevel, entries[0].Level)
	assert.Equal("fetch", entries[0].Message)
	assert.Equal("ident", entries[0].LoggerName)
	assert.Equal("127.0.0.1", entries[0].ContextMap()["address"])

	assert.Equal(zap.WarnLevel, entries[1].Level)
	assert.Equal("fetch failed", entries[1].Message)
	assert.Equal("IPv6", entries[1].ContextMap()["stack"])
}
