/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// NumBytes is the size of the TID memory bank handled by this package.
	NumBytes = 12
	// NumDigits is the number of hex digits in a canonical TID.
	NumDigits = NumBytes * 2
)

// Raw is a validated 96-bit TID. The zero value is not a valid TID; use
// Normalize to build one.
type Raw [NumBytes]byte

// Hex returns the canonical, uppercase, 24 digit representation.
func (r Raw) Hex() string {
	return strings.ToUpper(hex.EncodeToString(r[:]))
}

// Bytes returns a copy of the underlying bytes.
func (r Raw) Bytes() []byte {
	b := make([]byte, NumBytes)
	copy(b, r[:])
	return b
}

// String implements fmt.Stringer.
func (r Raw) String() string {
	return r.Hex()
}

// Normalize converts TID text into a Raw value.
//
// The text is case-insensitive and may contain ASCII space or hyphen separators,
// e.g. "e2-80-11-90-00-00-00-00-00-00-00-0a". After removing the separators it
// must be exactly 24 hex digits.
func Normalize(text string) (Raw, error) {
	var raw Raw

	// emptiness is checked on the original text, before any stripping
	if strings.TrimSpace(text) == "" {
		return raw, ErrEmptyInput
	}

	clean := Canonicalize(text)
	if n := utf8.RuneCountInString(clean); n != NumDigits {
		return raw, errors.Wrapf(ErrLength, "got %d characters", n)
	}

	for i := 0; i < len(clean); i++ {
		if !isHexDigit(clean[i]) {
			return raw, errors.Wrapf(ErrInvalidCharacter, "character %q at position %d", clean[i], i)
		}
	}

	if _, err := hex.Decode(raw[:], []byte(clean)); err != nil {
		return raw, errors.Wrap(ErrInvalidCharacter, err.Error())
	}
	return raw, nil
}

// Canonicalize strips ASCII spaces and hyphens, uppercases and trims the text.
// It does not validate the result.
func Canonicalize(text string) string {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(text)
	return strings.TrimSpace(strings.ToUpper(clean))
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('A' <= c && c <= 'F')
}
