// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package net

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/xmidt-org/eventor"
	"github.com/xmidt-org/ident-agent/internal/net/event"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEnumeration  = errors.New("interface enumeration failed")
)

// DefaultVirtualPrefixes are the interface name prefixes treated as virtual
// when virtual interfaces are excluded and no prefixes are given.
var DefaultVirtualPrefixes = []string{
	"utun",
	"tun",
	"tap",
	"docker",
	"veth",
	"br-",
	"virbr",
	"vmnet",
	"awdl",
	"llw",
}

// Family is the address family of a local address.
type Family string

const (
	V4 Family = "IPv4"
	V6 Family = "IPv6"
)

// InterfaceAddress is an address bound to a local interface.  The pair
// (InterfaceName, Address) identifies it.
type InterfaceAddress struct {
	InterfaceName string `json:"interface"`
	Address       string `json:"address"`
	Family        Family `json:"family"`
}

// NetworkService enumerates and classifies the local interface addresses.
type NetworkService struct {
	n                  NetworkWrapper
	virtualPrefixes    []string
	nowFunc            func() time.Time
	enumerateListeners eventor.Eventor[event.EnumerateListener]
}

// Option is the interface implemented by types that can be used to
// configure the network service.
type Option interface {
	apply(*NetworkService) error
}

func New(n NetworkWrapper, opts ...Option) (*NetworkService, error) {
	if n == nil {
		return nil, fmt.Errorf("%w network wrapper is missing", ErrInvalidInput)
	}

	ns := NetworkService{
		n:       n,
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt.apply(&ns); err != nil {
			return nil, err
		}
	}

	return &ns, nil
}

// Enumerate returns the presentable local addresses split by family, in the
// order the OS reported them.  No sorting or deduplication is done.
func (ns *NetworkService) Enumerate() (v4, v6 []InterfaceAddress, err error) {
	e := event.Enumerate{
		At: ns.nowFunc(),
	}

	entries, err := ns.n.InterfaceAddresses()
	switch {
	case err == nil:
	case errors.Is(err, ErrInterfaceAddresses):
		e.Skipped = err
	default:
		e.Duration = ns.nowFunc().Sub(e.At)
		e.Err = errors.Join(err, ErrEnumeration)
		return nil, nil, ns.dispatch(e)
	}

	v4 = []InterfaceAddress{}
	v6 = []InterfaceAddress{}
	for _, entry := range entries {
		addr, ok := ns.classify(entry)
		if !ok {
			continue
		}
		switch addr.Family {
		case V4:
			v4 = append(v4, addr)
		case V6:
			v6 = append(v6, addr)
		}
	}

	e.Seen = len(entries)
	e.V4 = len(v4)
	e.V6 = len(v6)
	e.Duration = ns.nowFunc().Sub(e.At)

	return v4, v6, ns.dispatch(e)
}

// classify applies the filtering rules to one entry.
func (ns *NetworkService) classify(entry RawEntry) (InterfaceAddress, bool) {
	if isLoopback(entry) {
		return InterfaceAddress{}, false
	}

	if entry.FlagsKnown {
		const want = net.FlagUp | net.FlagRunning
		if entry.Flags&want != want {
			return InterfaceAddress{}, false
		}
	}

	if ns.isVirtual(entry.Name) {
		return InterfaceAddress{}, false
	}

	if entry.IP == nil {
		return InterfaceAddress{}, false
	}

	text := entry.IP.String()
	if entry.Zone != "" {
		text += "%" + entry.Zone
	}

	if strings.Contains(text, "%") {
		return InterfaceAddress{}, false
	}

	addr := InterfaceAddress{
		InterfaceName: entry.Name,
		Address:       text,
	}

	switch {
	case entry.IP.To4() != nil:
		addr.Family = V4
	case len(entry.IP) == net.IPv6len:
		addr.Family = V6
	default:
		return InterfaceAddress{}, false
	}

	return addr, true
}

func isLoopback(entry RawEntry) bool {
	if entry.FlagsKnown && entry.Flags&net.FlagLoopback != 0 {
		return true
	}

	name := entry.Name
	if name == "lo" || strings.HasPrefix(strings.ToLower(name), "loopback") {
		return true
	}

	if rest, ok := strings.CutPrefix(name, "lo"); ok && rest != "" {
		return strings.Trim(rest, "0123456789") == ""
	}

	return false
}

func (ns *NetworkService) isVirtual(name string) bool {
	for _, prefix := range ns.virtualPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// dispatch dispatches the event to the listeners and returns the error that
// should be returned by the caller.
func (ns *NetworkService) dispatch(evnt any) error {
	switch evnt := evnt.(type) {
	case event.Enumerate:
		ns.enumerateListeners.Visit(func(listener event.EnumerateListener) {
			listener.OnEnumerate(evnt)
		})
		return evnt.Err
	}

	panic("unknown event type")
}
