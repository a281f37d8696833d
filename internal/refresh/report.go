// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
)

// Report renders the state as plain text, printing only the fields that are
// present.
func (s State) Report() string {
	var buf strings.Builder

	writeStack(&buf, "IPv4", s.V4)
	writeStack(&buf, "IPv6", s.V6)
	writeLocal(&buf, "IPv4", s.LocalV4)
	writeLocal(&buf, "IPv6", s.LocalV6)

	if s.Completed() {
		fmt.Fprintf(&buf, "Fetched: %s (%.3fs)\n", s.CompletedAt.Format(SummaryLayout), s.Elapsed.Seconds())
	}
	if s.Phase == Refreshing {
		buf.WriteString("Refreshing...\n")
	}

	return buf.String()
}

func writeStack(buf *strings.Builder, label string, r *ident.StackResult) {
	switch {
	case r == nil:
		fmt.Fprintf(buf, "%s: not fetched yet\n", label)
		return
	case r.Record == nil:
		fmt.Fprintf(buf, "%s not available: %s\n", label, r.ErrorMessage)
		return
	}

	rec := r.Record
	fmt.Fprintf(buf, "%s address: %s\n", label, rec.Address)

	if rec.Hostname != nil {
		fmt.Fprintf(buf, "  Hostname: %s\n", *rec.Hostname)
	}

	switch {
	case rec.Organization != nil && rec.ASNumber != nil:
		fmt.Fprintf(buf, "  AS: %s (%d)\n", *rec.Organization, *rec.ASNumber)
	case rec.Organization != nil:
		fmt.Fprintf(buf, "  AS: %s\n", *rec.Organization)
	case rec.ASNumber != nil:
		fmt.Fprintf(buf, "  AS: %d\n", *rec.ASNumber)
	}
	if u := rec.ASNLookupURL(); u != "" {
		fmt.Fprintf(buf, "  AS details: %s\n", u)
	}

	if rec.Continent != nil {
		fmt.Fprintf(buf, "  Continent: %s\n", *rec.Continent)
	}
	if loc := rec.LocationSummary(); loc != "" {
		fmt.Fprintf(buf, "  Location: %s\n", loc)
	}
	if rec.CountryCode != nil {
		fmt.Fprintf(buf, "  Country code: %s\n", *rec.CountryCode)
	}
	if lat, lon, ok := rec.Coordinates(); ok {
		fmt.Fprintf(buf, "  Coordinates: %s, %s\n",
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lon, 'f', -1, 64))
	}
	if rec.TimeZone != nil {
		fmt.Fprintf(buf, "  Timezone: %s\n", *rec.TimeZone)
	}
}

func writeLocal(buf *strings.Builder, label string, addrs []net.InterfaceAddress) {
	fmt.Fprintf(buf, "Local %s addresses:\n", label)
	if len(addrs) == 0 {
		buf.WriteString("  none\n")
		return
	}
	for _, a := range addrs {
		fmt.Fprintf(buf, "  %s: %s\n", a.InterfaceName, a.Address)
	}
}
