// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

// StackResult is the outcome of one fetch on one stack.  Exactly one of
// Record and ErrorMessage is set once the fetch has completed; the zero value
// means no fetch has completed.
type StackResult struct {
	Record       *IdentityRecord `json:"record,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
}

// Success returns a result holding the record.
func Success(rec *IdentityRecord) StackResult {
	return StackResult{Record: rec}
}

// Failure returns a result holding the error description.  An empty message
// is replaced so the result is never mistaken for an incomplete one.
func Failure(msg string) StackResult {
	if msg == "" {
		msg = "unknown error"
	}
	return StackResult{ErrorMessage: msg}
}

// Completed reports whether the result holds either a record or an error.
func (r StackResult) Completed() bool {
	return r.Record != nil || r.ErrorMessage != ""
}

// OK reports whether the result holds a record.
func (r StackResult) OK() bool {
	return r.Record != nil
}

// Clone returns a deep copy of the result.
func (r StackResult) Clone() StackResult {
	return StackResult{
		Record:       r.Record.Clone(),
		ErrorMessage: r.ErrorMessage,
	}
}
