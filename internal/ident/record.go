// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ASNLookupBaseURL is where ASNLookupURL points for AS details.
const ASNLookupBaseURL = "https://bgpview.io/asn/"

// IdentityRecord is the decoded result of one successful fetch.  Every field
// other than Address is optional and is nil when the endpoint did not provide
// it (or provided an empty value).
type IdentityRecord struct {
	// Address is the public IP address as reported by the endpoint.
	Address string `json:"address"`

	Hostname     *string `json:"hostname,omitempty"`
	Organization *string `json:"organization,omitempty"`
	ASNumber     *int64  `json:"as_number,omitempty"`

	PostalCode  *string `json:"postal_code,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
	Continent   *string `json:"continent,omitempty"`
	TimeZone    *string `json:"time_zone,omitempty"`

	// Latitude and Longitude are expected as a pair, but that is not enforced
	// by the wire format.  Use Coordinates() to get both or neither.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// LocationSummary joins the postal code, city and country with ", ",
// skipping the ones that are absent or empty.
func (r IdentityRecord) LocationSummary() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{r.PostalCode, r.City, r.Country} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, ", ")
}

// Coordinates returns the latitude and longitude only when both are present.
func (r IdentityRecord) Coordinates() (lat, lon float64, ok bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return 0, 0, false
	}
	return *r.Latitude, *r.Longitude, true
}

// ASNLookupURL returns a link to the AS details, or "" if the AS number is
// unknown.
func (r IdentityRecord) ASNLookupURL() string {
	if r.ASNumber == nil {
		return ""
	}
	return ASNLookupBaseURL + strconv.FormatInt(*r.ASNumber, 10)
}

// Clone returns a deep copy of the record.
func (r *IdentityRecord) Clone() *IdentityRecord {
	if r == nil {
		return nil
	}

	c := IdentityRecord{Address: r.Address}
	c.Hostname = clonePtr(r.Hostname)
	c.Organization = clonePtr(r.Organization)
	c.ASNumber = clonePtr(r.ASNumber)
	c.PostalCode = clonePtr(r.PostalCode)
	c.City = clonePtr(r.City)
	c.Country = clonePtr(r.Country)
	c.CountryCode = clonePtr(r.CountryCode)
	c.Continent = clonePtr(r.Continent)
	c.TimeZone = clonePtr(r.TimeZone)
	c.Latitude = clonePtr(r.Latitude)
	c.Longitude = clonePtr(r.Longitude)

	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// wireRecord is the JSON object returned by the identity endpoints.
type wireRecord struct {
	IP        *string   `json:"ip"`
	Hostname  *string   `json:"hostname"`
	ASO       *string   `json:"aso"`
	ASN       FlexInt   `json:"asn"`
	Postal    *string   `json:"postal"`
	City      *string   `json:"city"`
	Country   *string   `json:"country"`
	CC        *string   `json:"cc"`
	Continent *string   `json:"continent"`
	TZ        *string   `json:"tz"`
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
}

// Decode parses an identity endpoint response body.  Only "ip" is required;
// any failure is wrapped with ErrDecode.
func Decode(body []byte) (*IdentityRecord, error) {
	var w wireRecord

	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if w.IP == nil || strings.TrimSpace(*w.IP) == "" {
		return nil, fmt.Errorf("%w: missing mandatory field (ip)", ErrDecode)
	}

	if w.ASN.Valid && (w.ASN.Value < 0 || w.ASN.Value > math.MaxUint32) {
		return nil, fmt.Errorf("%w: invalid field (asn): %d is not a 32-bit AS number", ErrDecode, w.ASN.Value)
	}

	r := IdentityRecord{
		Address:      strings.TrimSpace(*w.IP),
		Hostname:     optString(w.Hostname),
		Organization: optString(w.ASO),
		PostalCode:   optString(w.Postal),
		City:         optString(w.City),
		Country:      optString(w.Country),
		CountryCode:  optString(w.CC),
		Continent:    optString(w.Continent),
		TimeZone:     optString(w.TZ),
	}

	if w.ASN.Valid {
		r.ASNumber = &w.ASN.Value
	}
	if w.Latitude.Valid {
		r.Latitude = &w.Latitude.Value
	}
	if w.Longitude.Valid {
		r.Longitude = &w.Longitude.Value
	}

	return &r, nil
}

func optString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// FlexInt is an integer that may arrive as a JSON number or as a numeric
// string.  Endpoint revisions have used both for the AS number.  An "AS"
// prefix on the string form is tolerated.
type FlexInt struct {
	Value int64
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}

	s, present, err := flexText(data)
	if err != nil || !present {
		return err
	}

	if len(s) > 2 && strings.EqualFold(s[:2], "AS") {
		s = s[2:]
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		f.Value, f.Valid = v, true
		return nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("integer value %q out of range", s)
	}

	fv, err := strconv.ParseFloat(s, 64)
	if err != nil || fv != math.Trunc(fv) || math.IsInf(fv, 0) {
		return fmt.Errorf("invalid integer value %q", s)
	}
	// 2^63 is the first float64 above the int64 range.
	if fv < math.MinInt64 || fv >= math.MaxInt64 {
		return fmt.Errorf("integer value %q out of range", s)
	}

	f.Value, f.Valid = int64(fv), true
	return nil
}

// FlexFloat is a float that may arrive as a JSON number or as a numeric
// string.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}

	s, present, err := flexText(data)
	if err != nil || !present {
		return err
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number value %q", s)
	}

	f.Value, f.Valid = v, true
	return nil
}

// flexText returns the textual form of a JSON number or string.  null and
// empty strings are reported as not present.
func flexText(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false, err
	}
	return n.String(), true, nil
}
