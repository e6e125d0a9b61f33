/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// SerialBits is the width of the unified serial accessor.
	SerialBits = 40
	// Serial38Bits is the width of the Monza R6 serial.
	Serial38Bits = 38

	serialHexDigits = SerialBits / 4
	minStructBytes  = 8
)

// Serial is a vendor specific serial number extracted from a TID.
type Serial struct {
	Value    uint64
	BitWidth int
	// Hex is always 10 uppercase digits, even for 38-bit serials.
	Hex string
}

// Decimal returns the serial's value obtained by parsing its hex text in base 16.
func (s Serial) Decimal() uint64 {
	value, err := strconv.ParseUint(s.Hex, 16, 64)
	if err != nil {
		// Hex is only ever produced by newSerial
		return s.Value
	}
	return value
}

// Binary returns the value as zero-padded binary text, BitWidth digits long.
func (s Serial) Binary() string {
	return fmt.Sprintf("%0*b", s.BitWidth, s.Value)
}

func newSerial(value uint64, bitWidth int) Serial {
	return Serial{Value: value, BitWidth: bitWidth, Hex: fmt.Sprintf("%0*X", serialHexDigits, value)}
}

// ExtractSerial returns the 40-bit serial of the TID using the algorithm
// selected by its family. Monza R6 tags go through Serial38 and keep their
// 38-bit width, but are still formatted as 10 hex digits.
func ExtractSerial(raw Raw, family Family) (Serial, error) {
	switch family {
	case FamilyImpinjM700, FamilyImpinjM800:
		return newSerial(impinjSerial(raw), SerialBits), nil
	case FamilyImpinjMonzaR6:
		return Serial38(raw)
	case FamilyNXPUcode9:
		return newSerial(foldBigEndian(raw[7:12]), SerialBits), nil
	case FamilyImpinjOther, FamilyUnknown:
		return newSerial(fallbackSerial(raw), SerialBits), nil
	}
	return Serial{}, errors.Errorf("no serial algorithm for family %d", int(family))
}

// Serial38 returns the 38-bit serial of a Monza R6 tag. The TID must pass
// ValidateStructure and belong to FamilyImpinjMonzaR6.
func Serial38(raw Raw) (Serial, error) {
	if err := ValidateStructure(raw[:]); err != nil {
		return Serial{}, err
	}
	if Classify(raw) != FamilyImpinjMonzaR6 {
		return Serial{}, errors.Wrapf(ErrUnsupportedFamily, "TMN 0x%03X", ModelNumber(raw))
	}

	serial := impinjSerial(raw)
	// unreachable while impinjSerial masks byte 6 with 0x3F
	if serial >= 1<<Serial38Bits {
		return Serial{}, errors.Wrapf(ErrSerialRange, "serial 0x%X", serial)
	}
	return newSerial(serial, Serial38Bits), nil
}

// Serial38Binary returns the Monza R6 serial as 38 binary digits.
func Serial38Binary(raw Raw) (string, error) {
	serial, err := Serial38(raw)
	if err != nil {
		return "", err
	}
	return serial.Binary(), nil
}

// ValidateStructure checks the EPC Gen2 header of TID data as needed by the
// 38-bit serial path. Each failure wraps ErrStructuralValidation.
func ValidateStructure(data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(ErrStructuralValidation, "empty TID")
	}
	if len(data) < minStructBytes {
		return errors.Wrapf(ErrStructuralValidation, "TID must have at least %d bytes", minStructBytes)
	}
	if data[0] != gen2ClassID || data[1]&0x7F != 0x00 {
		return errors.Wrapf(ErrStructuralValidation, "unexpected header 0x%02X%02X", data[0], data[1])
	}
	if data[1]&0x80 == 0 {
		return errors.Wrap(ErrStructuralValidation, "missing XTID bit")
	}
	if data[2]>>4 == 0 {
		return errors.Wrap(ErrStructuralValidation, "invalid manufacturer nibble")
	}
	return nil
}

// MonzaSeriesID returns bits 7-6 of byte 10. The value only has a meaning for
// Impinj tags.
func MonzaSeriesID(raw Raw) uint8 {
	return (raw[10] >> 6) & 0x03
}

// impinjSerial reads the low 6 bits of byte 6 followed by bytes 7 to 10.
func impinjSerial(raw Raw) uint64 {
	return uint64(raw[6]&0x3F)<<32 |
		uint64(raw[7])<<24 |
		uint64(raw[8])<<16 |
		uint64(raw[9])<<8 |
		uint64(raw[10])
}

// fallbackSerial reads the last 5 bytes as a big-endian value.
func fallbackSerial(raw Raw) uint64 {
	return foldBigEndian(raw[NumBytes-5:])
}

func foldBigEndian(data []byte) uint64 {
	var value uint64
	for _, b := range data {
		value = value<<8 | uint64(b)
	}
	return value
}
