// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package net

import (
	"errors"
	"fmt"
	"net"
)

// ErrInterfaceAddresses is returned, along with the entries of the other
// interfaces, when the addresses of some interfaces could not be read.
var ErrInterfaceAddresses = errors.New("interface addresses unavailable")

// RawEntry is one address bound to one interface, as reported by the OS.
type RawEntry struct {
	Name string

	// Flags are only meaningful when FlagsKnown is true.
	Flags      net.Flags
	FlagsKnown bool

	IP   net.IP
	Zone string
}

type NetworkWrap struct{}

// NetworkWrapper is the OS capability used to list interface addresses.
type NetworkWrapper interface {
	InterfaceAddresses() ([]RawEntry, error)
}

func NewNetworkWrapper() NetworkWrapper {
	return new(NetworkWrap)
}

// InterfaceAddresses lists every address of every interface.  Link-local
// IPv6 addresses are given the interface name as their zone, which is how the
// platform name lookup renders them.  An interface whose addresses cannot be
// read is skipped and reported with ErrInterfaceAddresses.
func (n *NetworkWrap) InterfaceAddresses() ([]RawEntry, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var entries []RawEntry
	var errs []error
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInterfaceAddresses, iface.Name, err))
			continue
		}

		for _, addr := range addrs {
			e := RawEntry{
				Name:       iface.Name,
				Flags:      iface.Flags,
				FlagsKnown: true,
			}

			switch a := addr.(type) {
			case *net.IPNet:
				e.IP = a.IP
			case *net.IPAddr:
				e.IP = a.IP
				e.Zone = a.Zone
			default:
				continue
			}

			if e.Zone == "" && isScoped(e.IP) {
				e.Zone = iface.Name
			}

			entries = append(entries, e)
		}
	}

	return entries, errors.Join(errs...)
}

func isScoped(ip net.IP) bool {
	if ip.To4() != nil {
		return false
	}
	return ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast()
}
