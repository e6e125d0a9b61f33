/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package tid decodes the 96-bit Tag Identifier (TID) memory bank of EPC Gen2
// RFID tags into the chip vendor, the tag model and a vendor specific serial
// number.
//
// Decoding is a pure function of the TID text:
//
//	descriptor, err := tid.Parse("E2-80-11-90-00-00-00-00-00-00-00-0A")
//
// Input is normalized first (separators stripped, uppercased, exactly 24 hex
// digits), then the vendor family is classified once from fixed bit patterns,
// and that single result selects the serial extraction algorithm:
//
//	Impinj M700/M800   6 low bits of byte 6, then bytes 7-10
//	Impinj Monza R6    same layout, through the validated 38-bit path
//	NXP UCODE 9        bytes 7-11, big-endian
//	anything else      the last 5 bytes, big-endian
//
// All errors wrap one of the package's sentinel errors and can be matched with
// errors.Cause.
package tid
