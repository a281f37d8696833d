// SPDX-FileCopyrightText: 2024 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package net

import "go.uber.org/fx"

type NetworkServiceIn struct {
	fx.In

	// Wrapper replaces the OS query, mainly for tests.
	Wrapper NetworkWrapper `optional:"true"`

	// Options are collected from the network_service_options group.
	Options []Option `group:"network_service_options"`
}

type NetworkServiceOut struct {
	fx.Out
	NetworkService *NetworkService
}

var NetworkServiceModule = fx.Module("networkService",
	fx.Provide(
		func(in NetworkServiceIn) (NetworkServiceOut, error) {
			wrapper := in.Wrapper
			if wrapper == nil {
				wrapper = NewNetworkWrapper()
			}

			ns, err := New(wrapper, in.Options...)
			if err != nil {
				return NetworkServiceOut{}, err
			}

			return NetworkServiceOut{NetworkService: ns}, nil
		}),
)
