/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSerial(t *testing.T) {
	tests := []struct {
		name     string
		tid      string
		hex      string
		decimal  uint64
		bitWidth int
	}{
		{"M700 zero serial", "E2801190000000000000000A", "0000000000", 0, SerialBits},
		{"M700 byte 10", "E28011900000000000000A00", "000000000A", 10, SerialBits},
		{"M700 masks byte 6", "E2801190123456789ABCDEF0", "16789ABCDE", 96512687326, SerialBits},
		{"M800", "E28011B00000000000000D00", "000000000D", 13, SerialBits},
		{"Monza R6", "E28011200000FFFFFFFFFF00", "3FFFFFFFFF", 274877906943, Serial38Bits},
		{"NXP UCODE 9", "E2806915000000000000000E", "000000000E", 14, SerialBits},
		{"NXP UCODE 9 bytes 7-11", "E28069150123456789ABCDEF", "6789ABCDEF", 444691369455, SerialBits},
		{"unknown vendor", "FF00AA00000000000000002A", "000000002A", 42, SerialBits},
		{"unknown vendor last 5 bytes", "FF00AA000123456789ABCDEF", "6789ABCDEF", 444691369455, SerialBits},
		{"unknown max", "E2001190000000FFFFFFFFFF", "FFFFFFFFFF", 1099511627775, SerialBits},
		{"unrecognized Impinj sub-family", "E28011B1000000000000002A", "000000002A", 42, SerialBits},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := mustNormalize(t, test.tid)
			serial, err := ExtractSerial(raw, Classify(raw))
			require.NoError(t, err)
			assert.Equal(t, test.hex, serial.Hex)
			assert.Equal(t, test.decimal, serial.Decimal())
			assert.Equal(t, test.decimal, serial.Value)
			assert.Equal(t, test.bitWidth, serial.BitWidth)
		})
	}
}

func TestExtractSerialUnknownFamily(t *testing.T) {
	raw := mustNormalize(t, "E2801190000000000000000A")
	_, err := ExtractSerial(raw, Family(99))
	assert.Error(t, err)
}

func TestSerial38(t *testing.T) {
	raw := mustNormalize(t, "E28011200000FFFFFFFFFF00")

	serial, err := Serial38(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<38-1), serial.Value)
	assert.Equal(t, Serial38Bits, serial.BitWidth)

	binary, err := Serial38Binary(raw)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("1", 38), binary)

	raw = mustNormalize(t, "E2801121000000000000050A")
	binary, err = Serial38Binary(raw)
	require.NoError(t, err)
	assert.Len(t, binary, 38)
	assert.Equal(t, strings.Repeat("0", 34)+"0101", binary)
}

func TestSerial38Errors(t *testing.T) {
	tests := []struct {
		name    string
		tid     string
		cause   error
		message string
	}{
		{"M700 tag", "E2801190000000000000000A", ErrUnsupportedFamily, "not Monza R6"},
		{"NXP tag", "E2806915000000000000000E", ErrUnsupportedFamily, "not Monza R6"},
		{"unrecognized Impinj", "E28011B1000000000000000E", ErrUnsupportedFamily, "not Monza R6"},
		{"missing XTID", "E2001120000000000000000A", ErrStructuralValidation, "missing XTID bit"},
		{"bad class id", "E3801120000000000000000A", ErrStructuralValidation, "unexpected header"},
		{"bad byte 1", "E2811120000000000000000A", ErrStructuralValidation, "unexpected header"},
		{"zero manufacturer", "E2800120000000000000000A", ErrStructuralValidation, "invalid manufacturer nibble"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Serial38(mustNormalize(t, test.tid))
			require.Error(t, err)
			assert.Equal(t, test.cause, errors.Cause(err))
			assert.Contains(t, err.Error(), test.message)
			assert.False(t, IsInputError(err))
			assert.True(t, IsDecodeError(err))

			_, err = Serial38Binary(mustNormalize(t, test.tid))
			assert.Equal(t, test.cause, errors.Cause(err))
		})
	}
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{"nil", nil, "empty TID"},
		{"empty", []byte{}, "empty TID"},
		{"short", []byte{0xE2, 0x80, 0x11, 0x20}, "at least 8 bytes"},
		{"header", []byte{0xE0, 0x80, 0x11, 0x20, 0, 0, 0, 0}, "unexpected header"},
		{"XTID", []byte{0xE2, 0x00, 0x11, 0x20, 0, 0, 0, 0}, "missing XTID bit"},
		{"manufacturer", []byte{0xE2, 0x80, 0x01, 0x20, 0, 0, 0, 0}, "invalid manufacturer nibble"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateStructure(test.data)
			require.Error(t, err)
			assert.Equal(t, ErrStructuralValidation, errors.Cause(err))
			assert.Contains(t, err.Error(), test.message)
		})
	}

	assert.NoError(t, ValidateStructure([]byte{0xE2, 0x80, 0x11, 0x20, 0, 0, 0, 0}))
}

func TestMonzaSeriesID(t *testing.T) {
	tests := map[string]uint8{
		"E28011900000000000000000": 0,
		"E28011900000000000004000": 1,
		"E28011900000000000008000": 2,
		"E2801190000000000000C000": 3,
		"E2801190000000000000FF00": 3,
		// byte 11 is not part of the series id
		"E280119000000000000000C0": 0,
	}

	for tid, expected := range tests {
		assert.Equal(t, expected, MonzaSeriesID(mustNormalize(t, tid)), tid)
	}
}

func TestSerialBinaryWidth(t *testing.T) {
	serial := newSerial(5, SerialBits)
	assert.Equal(t, "0000000005", serial.Hex)
	assert.Equal(t, strings.Repeat("0", 37)+"101", serial.Binary())
}
