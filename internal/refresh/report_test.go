// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
)

func TestReport(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int64) *int64 { return &n }
	flt := func(f float64) *float64 { return &f }

	v4 := ident.Success(&ident.IdentityRecord{
		Address:      "203.0.113.7",
		Organization: str("Example Org"),
		ASNumber:     num(64496),
		Continent:    str("EU"),
		PostalCode:   str("75001"),
		City:         str("Paris"),
		Country:      str("France"),
		CountryCode:  str("FR"),
		Latitude:     flt(48.8566),
		Longitude:    flt(2.3522),
		TimeZone:     str("Europe/Paris"),
	})
	v6 := ident.Failure("transport failure: no route to host")

	start := time.Date(2025, 3, 4, 13, 2, 3, 0, time.UTC)

	tests := []struct {
		description string
		state       State
		expected    string
	}{
		{
			description: "never refreshed",
			state:       State{Phase: Idle},
			expected: "IPv4: not fetched yet\n" +
				"IPv6: not fetched yet\n" +
				"Local IPv4 addresses:\n  none\n" +
				"Local IPv6 addresses:\n  none\n",
		}, {
			description: "completed",
			state: State{
				Phase:       Idle,
				V4:          &v4,
				V6:          &v6,
				LocalV4:     []net.InterfaceAddress{{InterfaceName: "en0", Address: "192.168.1.5", Family: net.V4}},
				StartedAt:   start,
				CompletedAt: start.Add(532 * time.Millisecond),
				Elapsed:     532 * time.Millisecond,
			},
			expected: "IPv4 address: 203.0.113.7\n" +
				"  AS: Example Org (64496)\n" +
				"  AS details: https://bgpview.io/asn/64496\n" +
				"  Continent: EU\n" +
				"  Location: 75001, Paris, France\n" +
				"  Country code: FR\n" +
				"  Coordinates: 48.8566, 2.3522\n" +
				"  Timezone: Europe/Paris\n" +
				"IPv6 not available: transport failure: no route to host\n" +
				"Local IPv4 addresses:\n  en0: 192.168.1.5\n" +
				"Local IPv6 addresses:\n  none\n" +
				"Fetched: March 4, 2025 at 1:02:03 PM (0.532s)\n",
		}, {
			description: "refreshing",
			state:       State{Phase: Refreshing, PendingCount: 2},
			expected: "IPv4: not fetched yet\n" +
				"IPv6: not fetched yet\n" +
				"Local IPv4 addresses:\n  none\n" +
				"Local IPv6 addresses:\n  none\n" +
				"Refreshing...\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.state.Report())
		})
	}
}
