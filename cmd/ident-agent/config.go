// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/goschtalt/goschtalt"
	_ "github.com/goschtalt/goschtalt/pkg/typical"
	_ "github.com/goschtalt/properties-decoder"
	_ "github.com/goschtalt/yaml-decoder"
	_ "github.com/goschtalt/yaml-encoder"
	"github.com/xmidt-org/arrange/arrangehttp"
	"github.com/xmidt-org/sallust"
	"gopkg.in/dealancer/validate.v2"
)

//go:embed default-config.yaml
var defaultConfigFile []byte

// Config is the configuration for the ident-agent.
type Config struct {
	Logger     sallust.Config
	Identity   Identity
	Interfaces Interfaces
	Geo        Geo
	Refresh    Refresh
}

// Identity contains the configuration for the public identity lookups.
type Identity struct {
	// Endpoints lists the identity endpoints per stack, keyed by "ipv4" and
	// "ipv6".  The first endpoint of a stack is the primary; the others are
	// mirrors tried only when the previous endpoint cannot be reached.  An
	// empty list uses the built-in endpoints.
	Endpoints map[string][]string

	// UserAgent is the User-Agent header sent with each lookup.
	UserAgent string

	// HTTPClient is the configuration for the HTTP client used for both
	// stacks.  Each stack gets its own copy pinned to its address family.
	HTTPClient arrangehttp.ClientConfig
}

// Interfaces contains the configuration for the local interface listing.
type Interfaces struct {
	// ExcludeVirtual drops tunnel, bridge and container interfaces.
	ExcludeVirtual bool

	// VirtualPrefixes are the interface name prefixes treated as virtual.  If
	// empty a built-in list is used.
	VirtualPrefixes []string
}

// Geo contains the optional GeoLite2 databases used to fill in the location
// and network fields the endpoints leave out.
type Geo struct {
	// CityDatabase is the path to a GeoLite2-City database.
	CityDatabase string

	// ASNDatabase is the path to a GeoLite2-ASN database.
	ASNDatabase string
}

// Refresh contains the configuration for refresh cycles.
type Refresh struct {
	// OnStart runs a refresh when the program starts.
	OnStart bool

	// Timeout bounds a refresh that is started by the program itself.  Zero
	// means the HTTP client timeout is the only bound.
	Timeout time.Duration `validate:"gte=0"`
}

// Collect and process the configuration files and env vars and
// produce a configuration object.
func provideConfig(cli *CLI) (*goschtalt.Config, error) {
	gs, err := goschtalt.New(
		goschtalt.StdCfgLayout(applicationName, cli.Files...),
		goschtalt.ConfigIs("two_words"),
		goschtalt.DefaultUnmarshalOptions(
			goschtalt.WithValidator(
				goschtalt.ValidatorFunc(validate.Validate),
			),
		),
		// Seed the program with the default, built-in configuration
		goschtalt.AddBuffer("!built-in.yaml", defaultConfigFile, goschtalt.AsDefault()),
	)
	if err != nil {
		return nil, err
	}

	if cli.Show {
		return gs, nil
	}

	var tmp Config
	err = gs.Unmarshal(goschtalt.Root, &tmp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "There is a critical error in the configuration.")
		fmt.Fprintln(os.Stderr, "Run with -s/--show to see the configuration.")
		return nil, err
	}

	return gs, nil
}

// handleCLIShow handles the -s/--show option where the configuration is shown,
// then the program is exited.
//
// The program exits with success because if the configuration is broken it
// will be very hard to debug where the problem originates.  This way you can
// see the configuration and then run the service with the same configuration
// to see the error.
func handleCLIShow(cli *CLI, cfg *goschtalt.Config, early *earlyExit) {
	if !cli.Show {
		return
	}

	fmt.Fprintln(os.Stdout, cfg.Explain().String())

	out, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	} else {
		fmt.Fprintln(os.Stdout, "## Final Configuration\n---\n"+string(out))
	}

	*early = earlyExit(true)
}
