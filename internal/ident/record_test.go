// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDecode(t *testing.T) {
	tests := []struct {
		description string
		body        string
		expectedErr error
		check       func(*assert.Assertions, *IdentityRecord)
	}{
		{
			description: "only the address",
			body:        `{"ip":"203.0.113.7"}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal("203.0.113.7", r.Address)
				assert.Nil(r.Hostname)
				assert.Nil(r.Organization)
				assert.Nil(r.ASNumber)
				assert.Nil(r.PostalCode)
				assert.Nil(r.City)
				assert.Nil(r.Country)
				assert.Nil(r.CountryCode)
				assert.Nil(r.Continent)
				assert.Nil(r.TimeZone)
				assert.Nil(r.Latitude)
				assert.Nil(r.Longitude)
				assert.Equal("", r.LocationSummary())
				assert.Equal("", r.ASNLookupURL())
			},
		}, {
			description: "full record",
			body: `{"ip":"2001:db8::1","hostname":"host.example.net","aso":"Example Org",
				"asn":64496,"continent":"EU","cc":"FR","country":"France","city":"Paris",
				"postal":"75001","latitude":48.8566,"longitude":2.3522,"tz":"Europe/Paris"}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal("2001:db8::1", r.Address)
				assert.Equal("host.example.net", *r.Hostname)
				assert.Equal("Example Org", *r.Organization)
				assert.Equal(int64(64496), *r.ASNumber)
				assert.Equal("EU", *r.Continent)
				assert.Equal("FR", *r.CountryCode)
				assert.Equal("Europe/Paris", *r.TimeZone)
				assert.Equal("75001, Paris, France", r.LocationSummary())
				assert.Equal("https://bgpview.io/asn/64496", r.ASNLookupURL())

				lat, lon, ok := r.Coordinates()
				assert.True(ok)
				assert.InDelta(48.8566, lat, 1e-9)
				assert.InDelta(2.3522, lon, 1e-9)
			},
		}, {
			description: "numeric strings",
			body:        `{"ip":"203.0.113.7","asn":"64496","latitude":"-33.5","longitude":" 151.25 "}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal(int64(64496), *r.ASNumber)
				assert.Equal(-33.5, *r.Latitude)
				assert.Equal(151.25, *r.Longitude)
			},
		}, {
			description: "AS prefixed number",
			body:        `{"ip":"203.0.113.7","asn":"AS64496"}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal(int64(64496), *r.ASNumber)
			},
		}, {
			description: "empty and null values are unset",
			body:        `{"ip":"203.0.113.7","asn":"","latitude":null,"longitude":"","postal":"  ","city":null}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Nil(r.ASNumber)
				assert.Nil(r.Latitude)
				assert.Nil(r.Longitude)
				assert.Nil(r.PostalCode)
				assert.Nil(r.City)
			},
		}, {
			description: "only one coordinate",
			body:        `{"ip":"203.0.113.7","latitude":1.5}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.NotNil(r.Latitude)
				_, _, ok := r.Coordinates()
				assert.False(ok)
			},
		}, {
			description: "unknown fields are ignored",
			body:        `{"ip":"203.0.113.7","something":"else"}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal("203.0.113.7", r.Address)
			},
		}, {
			description: "non-numeric asn",
			body:        `{"ip":"203.0.113.7","asn":"unknown"}`,
			expectedErr: ErrDecode,
		}, {
			description: "fractional asn",
			body:        `{"ip":"203.0.113.7","asn":1.5}`,
			expectedErr: ErrDecode,
		}, {
			description: "largest 32-bit asn",
			body:        `{"ip":"203.0.113.7","asn":4294967295}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal(int64(4294967295), *r.ASNumber)
			},
		}, {
			description: "asn as a whole float",
			body:        `{"ip":"203.0.113.7","asn":6.4496e4}`,
			check: func(assert *assert.Assertions, r *IdentityRecord) {
				assert.Equal(int64(64496), *r.ASNumber)
			},
		}, {
			description: "asn beyond 32 bits",
			body:        `{"ip":"203.0.113.7","asn":4294967296}`,
			expectedErr: ErrDecode,
		}, {
			description: "negative asn",
			body:        `{"ip":"203.0.113.7","asn":-5}`,
			expectedErr: ErrDecode,
		}, {
			description: "huge float asn",
			body:        `{"ip":"203.0.113.7","asn":1e30}`,
			expectedErr: ErrDecode,
		}, {
			description: "asn string beyond int64",
			body:        `{"ip":"203.0.113.7","asn":"9223372036854775808"}`,
			expectedErr: ErrDecode,
		}, {
			description: "non-numeric latitude",
			body:        `{"ip":"203.0.113.7","latitude":"north"}`,
			expectedErr: ErrDecode,
		}, {
			description: "missing ip",
			body:        `{"city":"Paris"}`,
			expectedErr: ErrDecode,
		}, {
			description: "empty ip",
			body:        `{"ip":""}`,
			expectedErr: ErrDecode,
		}, {
			description: "wrong typed ip",
			body:        `{"ip":42}`,
			expectedErr: ErrDecode,
		}, {
			description: "not json",
			body:        `<html>nope</html>`,
			expectedErr: ErrDecode,
		}, {
			description: "trailing data",
			body:        `{"ip":"203.0.113.7"} this is not json`,
			expectedErr: ErrDecode,
		}, {
			description: "two objects",
			body:        `{"ip":"203.0.113.7"}{"ip":"198.51.100.1"}`,
			expectedErr: ErrDecode,
		}, {
			description: "empty body",
			expectedErr: ErrDecode,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			got, err := Decode([]byte(tc.body))

			if tc.expectedErr != nil {
				assert.ErrorIs(err, tc.expectedErr)
				assert.Nil(got)
				return
			}

			require.NoError(err)
			require.NotNil(got)
			if tc.check != nil {
				tc.check(assert, got)
			}
		})
	}
}

func TestLocationSummary(t *testing.T) {
	tests := []struct {
		description string
		rec         IdentityRecord
		expected    string
	}{
		{
			description: "empty postal code",
			rec: IdentityRecord{
				PostalCode: strPtr(""),
				City:       strPtr("Paris"),
				Country:    strPtr("FR"),
			},
			expected: "Paris, FR",
		}, {
			description: "nothing",
			expected:    "",
		}, {
			description: "only country",
			rec:         IdentityRecord{Country: strPtr("FR")},
			expected:    "FR",
		}, {
			description: "order is preserved",
			rec: IdentityRecord{
				Country:    strPtr("US"),
				PostalCode: strPtr("80202"),
			},
			expected: "80202, US",
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.rec.LocationSummary())
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	assert := assert.New(t)

	asn := int64(1)
	orig := &IdentityRecord{
		Address:  "203.0.113.7",
		City:     strPtr("Paris"),
		ASNumber: &asn,
	}

	c := orig.Clone()
	*c.City = "Lyon"
	*c.ASNumber = 2

	assert.Equal("Paris", *orig.City)
	assert.Equal(int64(1), *orig.ASNumber)
	assert.Nil((*IdentityRecord)(nil).Clone())
}

func TestStackResult(t *testing.T) {
	assert := assert.New(t)

	var zero StackResult
	assert.False(zero.Completed())

	ok := Success(&IdentityRecord{Address: "203.0.113.7"})
	assert.True(ok.Completed())
	assert.True(ok.OK())
	assert.Empty(ok.ErrorMessage)

	bad := Failure("")
	assert.True(bad.Completed())
	assert.False(bad.OK())
	assert.NotEmpty(bad.ErrorMessage)
}
