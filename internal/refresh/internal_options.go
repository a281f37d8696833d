// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import "fmt"

func fetchersVador() Option {
	return optionFunc(
		func(c *Coordinator) error {
			if c.v4 == nil || c.v6 == nil {
				return fmt.Errorf("%w both fetchers are required", ErrInvalidInput)
			}
			return nil
		})
}

func enumeratorVador() Option {
	return optionFunc(
		func(c *Coordinator) error {
			if c.enumerator == nil {
				return fmt.Errorf("%w interface enumerator is missing", ErrInvalidInput)
			}
			return nil
		})
}
