/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput occurs when the TID text is empty or whitespace only.
	ErrEmptyInput = errors.New("TID cannot be empty")

	// ErrLength occurs when the cleaned TID text is not exactly 24 hex digits.
	ErrLength = errors.New("TID must have 24 hexadecimal characters (96 bits)")

	// ErrInvalidCharacter occurs when the cleaned TID text has a non-hex character.
	ErrInvalidCharacter = errors.New("TID contains invalid hexadecimal characters")

	// ErrStructuralValidation occurs when the TID header does not satisfy the
	// EPC Gen2 layout required by the 38-bit serial path.
	ErrStructuralValidation = errors.New("invalid TID structure")

	// ErrUnsupportedFamily occurs when the 38-bit serial is requested for a tag
	// outside the Monza R6 family.
	ErrUnsupportedFamily = errors.New("not Monza R6 family")

	// ErrSerialRange occurs when an extracted serial does not fit its bit width.
	ErrSerialRange = errors.New("serial number exceeds 38 bits")

	// ErrFormatArgument occurs when a serial is requested in an unknown format.
	ErrFormatArgument = errors.New("serial format must be 'hex' or 'decimal'")
)

// IsInputError returns true if err was caused by malformed TID text, i.e. one of
// ErrEmptyInput, ErrLength or ErrInvalidCharacter.
func IsInputError(err error) bool {
	switch errors.Cause(err) {
	case ErrEmptyInput, ErrLength, ErrInvalidCharacter:
		return true
	}
	return false
}

// IsDecodeError returns true if err is any of the error kinds raised by this
// package, as opposed to an unexpected failure.
func IsDecodeError(err error) bool {
	switch errors.Cause(err) {
	case ErrEmptyInput, ErrLength, ErrInvalidCharacter,
		ErrStructuralValidation, ErrUnsupportedFamily, ErrSerialRange, ErrFormatArgument:
		return true
	}
	return false
}
