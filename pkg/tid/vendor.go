/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

// Family is the vendor family of a tag. It drives the serial extraction
// algorithm and is computed once per TID by Classify.
type Family int

const (
	// FamilyUnknown is any TID not matched by a vendor predicate.
	FamilyUnknown Family = iota
	// FamilyImpinjMonzaR6 is the Impinj Monza R6 line (TMN 0x120, 0x121, 0x122, 0x170).
	FamilyImpinjMonzaR6
	// FamilyImpinjM700 is the Impinj M700 line (TMN 0x190, 0x191, 0x1A0, 0x1A2).
	FamilyImpinjM700
	// FamilyImpinjM800 is the Impinj M800 line (TMN 0x1B0).
	FamilyImpinjM800
	// FamilyImpinjOther is an Impinj TID whose model number belongs to no known
	// sub-family. Its serial is read with the generic fallback.
	FamilyImpinjOther
	// FamilyNXPUcode9 is the NXP UCODE 9 line.
	FamilyNXPUcode9
)

const (
	// UnknownVendor is the display name for TIDs with an unregistered prefix.
	UnknownVendor = "Unknown"

	gen2ClassID      = 0xE2
	impinjAllocation = 0x80
	impinjMDIDNibble = 0x1
	nxpUcode9Byte2   = 0x69
)

var familyNames = map[Family]string{
	FamilyUnknown:       "Unknown",
	FamilyImpinjMonzaR6: "ImpinjMonzaR6",
	FamilyImpinjM700:    "ImpinjM700",
	FamilyImpinjM800:    "ImpinjM800",
	FamilyImpinjOther:   "ImpinjOther",
	FamilyNXPUcode9:     "NxpUcode9",
}

// impinjSubFamilies maps Impinj tag model numbers to their sub-family.
var impinjSubFamilies = map[uint16]Family{
	0x120: FamilyImpinjMonzaR6,
	0x121: FamilyImpinjMonzaR6,
	0x122: FamilyImpinjMonzaR6,
	0x170: FamilyImpinjMonzaR6,
	0x190: FamilyImpinjM700,
	0x191: FamilyImpinjM700,
	0x1A0: FamilyImpinjM700,
	0x1A2: FamilyImpinjM700,
	0x1B0: FamilyImpinjM800,
}

// knownPrefixes maps the first 4 bytes of a TID, as uppercase hex, to the
// vendor display name.
var knownPrefixes = map[string]string{
	"E2801190": "Impinj Monza R6",
	"E2801191": "Impinj M730",
	"E28011A0": "Impinj M770",
	"E28011B0": "Impinj M830/M850",
	"E2806915": "NXP UCODE 9",
	"E2806995": "NXP UCODE 9",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return familyNames[FamilyUnknown]
}

// IsImpinj returns true for every Impinj family, including FamilyImpinjOther.
func (f Family) IsImpinj() bool {
	switch f {
	case FamilyImpinjMonzaR6, FamilyImpinjM700, FamilyImpinjM800, FamilyImpinjOther:
		return true
	}
	return false
}

// IsNXPUcode9 returns true for the NXP UCODE 9 family.
func (f Family) IsNXPUcode9() bool {
	return f == FamilyNXPUcode9
}

// Classify determines the vendor family of the TID. Impinj TIDs are refined
// into their sub-family using the tag model number.
func Classify(raw Raw) Family {
	switch {
	case isImpinj(raw):
		if family, ok := impinjSubFamilies[ModelNumber(raw)]; ok {
			return family
		}
		return FamilyImpinjOther
	case isNXPUcode9(raw):
		return FamilyNXPUcode9
	}
	return FamilyUnknown
}

// VendorName returns the display name registered for the TID's 4 byte prefix,
// or UnknownVendor.
func VendorName(raw Raw) string {
	if name, ok := knownPrefixes[raw.Hex()[:8]]; ok {
		return name
	}
	return UnknownVendor
}

func isImpinj(raw Raw) bool {
	return raw[0] == gen2ClassID &&
		raw[1] == impinjAllocation &&
		raw[2]>>4 == impinjMDIDNibble
}

func isNXPUcode9(raw Raw) bool {
	return raw[0] == gen2ClassID &&
		raw[1] == impinjAllocation &&
		raw[2] == nxpUcode9Byte2 &&
		(raw[3] == 0x15 || raw[3] == 0x95)
}
