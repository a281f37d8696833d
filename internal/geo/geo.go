// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package geo fills in the location and network details of an identity
// record from local GeoLite2 databases.
package geo

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/xmidt-org/ident-agent/internal/ident"
)

var ErrInvalidAddress = errors.New("invalid address")

// CityReader is the part of *geoip2.Reader used for location lookups.
type CityReader interface {
	City(net.IP) (*geoip2.City, error)
	Close() error
}

// ASNReader is the part of *geoip2.Reader used for AS lookups.
type ASNReader interface {
	ASN(net.IP) (*geoip2.ASN, error)
	Close() error
}

// Enricher fills absent fields of a record.  Fields the endpoint provided
// are never overwritten.
type Enricher struct {
	city    CityReader
	asn     ASNReader
	onError func(error)
}

// Open opens the databases at the given paths.  An empty path disables that
// lookup.
func Open(cityDB, asnDB string) (*Enricher, error) {
	var e Enricher

	if cityDB != "" {
		r, err := geoip2.Open(cityDB)
		if err != nil {
			return nil, fmt.Errorf("opening city database %s: %w", cityDB, err)
		}
		e.city = r
	}

	if asnDB != "" {
		r, err := geoip2.Open(asnDB)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("opening asn database %s: %w", asnDB, err)
		}
		e.asn = r
	}

	return &e, nil
}

// New creates an Enricher from already opened readers.  Either may be nil.
func New(city CityReader, asn ASNReader) *Enricher {
	return &Enricher{
		city: city,
		asn:  asn,
	}
}

// OnError sets a function called with each lookup failure.
func (e *Enricher) OnError(fn func(error)) {
	e.onError = fn
}

// Enabled reports whether any database is available.
func (e *Enricher) Enabled() bool {
	return e != nil && (e.city != nil || e.asn != nil)
}

// Close closes the databases.
func (e *Enricher) Close() error {
	var errs []error
	if e.city != nil {
		errs = append(errs, e.city.Close())
	}
	if e.asn != nil {
		errs = append(errs, e.asn.Close())
	}
	return errors.Join(errs...)
}

// Enrich fills in the absent fields of r.  Lookup errors leave r unchanged.
func (e *Enricher) Enrich(r *ident.IdentityRecord) {
	if !e.Enabled() || r == nil {
		return
	}

	ip := net.ParseIP(r.Address)
	if ip == nil {
		e.fail(fmt.Errorf("%w: %q", ErrInvalidAddress, r.Address))
		return
	}

	if e.city != nil {
		if rec, err := e.city.City(ip); err != nil {
			e.fail(err)
		} else if rec != nil {
			fillCity(r, rec)
		}
	}

	if e.asn != nil {
		if rec, err := e.asn.ASN(ip); err != nil {
			e.fail(err)
		} else if rec != nil {
			fillASN(r, rec)
		}
	}
}

func (e *Enricher) fail(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}

func fillCity(r *ident.IdentityRecord, rec *geoip2.City) {
	setString(&r.PostalCode, rec.Postal.Code)
	setString(&r.City, rec.City.Names["en"])
	setString(&r.Country, rec.Country.Names["en"])
	setString(&r.CountryCode, rec.Country.IsoCode)
	setString(&r.Continent, rec.Continent.Code)
	setString(&r.TimeZone, rec.Location.TimeZone)

	// The pair is filled together; 0,0 is how the database says unknown.
	if r.Latitude == nil && r.Longitude == nil &&
		(rec.Location.Latitude != 0 || rec.Location.Longitude != 0) {
		lat, lon := rec.Location.Latitude, rec.Location.Longitude
		r.Latitude = &lat
		r.Longitude = &lon
	}
}

func fillASN(r *ident.IdentityRecord, rec *geoip2.ASN) {
	if r.ASNumber == nil && rec.AutonomousSystemNumber != 0 {
		n := int64(rec.AutonomousSystemNumber)
		r.ASNumber = &n
	}
	setString(&r.Organization, rec.AutonomousSystemOrganization)
}

func setString(dst **string, v string) {
	if *dst != nil || v == "" {
		return
	}
	*dst = &v
}
