/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"fmt"
)

// MaxModelNumber is the largest 12-bit tag model number.
const MaxModelNumber = 0xFFF

// Model is the tag model number (TMN) and its display name.
type Model struct {
	Number uint16
	Name   string
}

var modelNames = map[uint16]string{
	// Impinj M700
	0x190: "Impinj M750",
	0x191: "Impinj M730",
	0x1A0: "Impinj M770",

	// Impinj M800
	0x1B0: "Impinj M830/M850",

	// Impinj Monza R6
	0x120: "Impinj Monza R6",
	0x121: "Impinj Monza R6-A",
	0x122: "Impinj Monza R6-P",

	// Impinj Monza 4 and 5
	0x0B2: "Impinj Monza 4D",
	0x0B3: "Impinj Monza 4E",
	0x0B4: "Impinj Monza 4U",
	0x0B5: "Impinj Monza 4QT",
	0x0C0: "Impinj Monza 5",

	// NXP UCODE
	0x915: "NXP UCODE 9",
	0x995: "NXP UCODE 9",
	0x910: "NXP UCODE 8",
	0x990: "NXP UCODE 8",
	0x970: "NXP UCODE 7",
}

// Hex returns the model number as 3 uppercase hex digits.
func (m Model) Hex() string {
	return fmt.Sprintf("%03X", m.Number)
}

// ModelNumber extracts the 12-bit TMN: the low nibble of byte 2 followed by byte 3.
func ModelNumber(raw Raw) uint16 {
	return uint16(raw[2]&0x0F)<<8 | uint16(raw[3])
}

// ResolveModel returns the model number of the TID along with its display name.
// Unregistered numbers get a synthesized "Unknown (TMN 0x...)" name.
func ResolveModel(raw Raw) Model {
	number := ModelNumber(raw)
	name, ok := modelNames[number]
	if !ok {
		name = fmt.Sprintf("Unknown (TMN 0x%03X)", number)
	}
	return Model{Number: number, Name: name}
}
