// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"strconv"

	"github.com/xmidt-org/ident-agent/internal/ident"
	"github.com/xmidt-org/ident-agent/internal/net"
	"github.com/xmidt-org/ident-agent/internal/refresh"
)

type RefreshInput struct {
	// Join makes a refresh request that arrives during a running cycle wait
	// for that cycle instead of failing.
	Join bool `json:"join,omitempty" jsonschema:"wait for a refresh that is already running instead of failing"`
}

type StateInput struct{}

type StateOutput struct {
	Phase     string         `json:"phase"`
	Cycle     uint64         `json:"cycle"`
	ID        string         `json:"id,omitempty"`
	Fetched   string         `json:"fetched,omitempty"`
	IPv4      *StackOutput   `json:"ipv4,omitempty"`
	IPv6      *StackOutput   `json:"ipv6,omitempty"`
	LocalIPv4 []LocalAddress `json:"local_ipv4"`
	LocalIPv6 []LocalAddress `json:"local_ipv6"`
	Report    string         `json:"report"`
}

type StackOutput struct {
	Address      string `json:"address,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Organization string `json:"organization,omitempty"`
	ASNumber     int64  `json:"as_number,omitempty"`
	ASDetails    string `json:"as_details,omitempty"`
	Location     string `json:"location,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	Continent    string `json:"continent,omitempty"`
	TimeZone     string `json:"time_zone,omitempty"`
	Coordinates  string `json:"coordinates,omitempty"`
	Error        string `json:"error,omitempty"`
}

type LocalAddress struct {
	Interface string `json:"interface"`
	Address   string `json:"address"`
}

func toStateOutput(s refresh.State, fetched string) StateOutput {
	out := StateOutput{
		Phase:     string(s.Phase),
		Cycle:     s.Cycle,
		Fetched:   fetched,
		IPv4:      toStackOutput(s.V4),
		IPv6:      toStackOutput(s.V6),
		LocalIPv4: toLocal(s.LocalV4),
		LocalIPv6: toLocal(s.LocalV6),
		Report:    s.Report(),
	}
	if s.Cycle > 0 {
		out.ID = s.ID.String()
	}
	return out
}

func toStackOutput(r *ident.StackResult) *StackOutput {
	if r == nil {
		return nil
	}
	if r.Record == nil {
		return &StackOutput{Error: r.ErrorMessage}
	}

	rec := r.Record
	out := StackOutput{
		Address:      rec.Address,
		Hostname:     deref(rec.Hostname),
		Organization: deref(rec.Organization),
		ASDetails:    rec.ASNLookupURL(),
		Location:     rec.LocationSummary(),
		CountryCode:  deref(rec.CountryCode),
		Continent:    deref(rec.Continent),
		TimeZone:     deref(rec.TimeZone),
	}
	if rec.ASNumber != nil {
		out.ASNumber = *rec.ASNumber
	}
	if lat, lon, ok := rec.Coordinates(); ok {
		out.Coordinates = strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	}
	return &out
}

func toLocal(addrs []net.InterfaceAddress) []LocalAddress {
	list := make([]LocalAddress, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, LocalAddress{
			Interface: a.InterfaceName,
			Address:   a.Address,
		})
	}
	return list
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
