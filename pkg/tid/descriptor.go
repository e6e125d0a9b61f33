/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tid

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// FormatHex requests the serial as 10 uppercase hex digits.
	FormatHex = "hex"
	// FormatDecimal requests the serial as an unsigned integer.
	FormatDecimal = "decimal"
)

// Descriptor is everything decoded from a single TID. It is built once by
// Parse and never modified afterwards.
type Descriptor struct {
	Raw    Raw
	Family Family
	// Vendor is the display name from the prefix table.
	Vendor string
	Model  Model
	Serial Serial
	// MonzaSeriesID is only set for Impinj tags.
	MonzaSeriesID *uint8
}

// descriptorJSON is the wire representation of a Descriptor
type descriptorJSON struct {
	TID           string `json:"tid"`
	Vendor        string `json:"vendor"`
	ModelName     string `json:"modelName"`
	ModelNumber   string `json:"modelNumber"`
	SerialHex     string `json:"serialHex"`
	SerialDecimal uint64 `json:"serialDecimal"`
	MonzaSeriesID *uint8 `json:"monzaSeriesId,omitempty"`
	IsImpinj      bool   `json:"isImpinj"`
	IsNXPUcode9   bool   `json:"isNxpUcode9"`
}

// Parse decodes TID text into a Descriptor.
func Parse(text string) (Descriptor, error) {
	raw, err := Normalize(text)
	if err != nil {
		return Descriptor{}, err
	}
	return Decode(raw)
}

// Decode builds the Descriptor of an already normalized TID.
func Decode(raw Raw) (Descriptor, error) {
	family := Classify(raw)

	serial, err := ExtractSerial(raw, family)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "unable to extract serial from %s", raw.Hex())
	}

	descriptor := Descriptor{
		Raw:    raw,
		Family: family,
		Vendor: VendorName(raw),
		Model:  ResolveModel(raw),
		Serial: serial,
	}
	if family.IsImpinj() {
		seriesID := MonzaSeriesID(raw)
		descriptor.MonzaSeriesID = &seriesID
	}
	return descriptor, nil
}

// TID returns the canonical 24 digit text.
func (d Descriptor) TID() string {
	return d.Raw.Hex()
}

// IsImpinj returns true if the tag belongs to any Impinj family.
func (d Descriptor) IsImpinj() bool {
	return d.Family.IsImpinj()
}

// IsNXPUcode9 returns true if the tag is an NXP UCODE 9.
func (d Descriptor) IsNXPUcode9() bool {
	return d.Family.IsNXPUcode9()
}

// Key is the identity of the descriptor: its canonical TID text. Use it as a
// map key; two descriptors are equal if and only if their keys are.
func (d Descriptor) Key() string {
	return d.TID()
}

// Equal compares two descriptors by their canonical TID.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Key() == other.Key()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("TID(%s, vendor=%s, model=%s)", d.TID(), d.Vendor, d.Model.Name)
}

// MarshalJSON implements json.Marshaler
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

// Fields returns the descriptor as a flat map, keyed like its JSON form.
func (d Descriptor) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"tid":           d.TID(),
		"vendor":        d.Vendor,
		"modelName":     d.Model.Name,
		"modelNumber":   d.Model.Hex(),
		"serialHex":     d.Serial.Hex,
		"serialDecimal": d.Serial.Decimal(),
		"isImpinj":      d.IsImpinj(),
		"isNxpUcode9":   d.IsNXPUcode9(),
	}
	if d.MonzaSeriesID != nil {
		fields["monzaSeriesId"] = *d.MonzaSeriesID
	}
	return fields
}

func (d Descriptor) wire() descriptorJSON {
	return descriptorJSON{
		TID:           d.TID(),
		Vendor:        d.Vendor,
		ModelName:     d.Model.Name,
		ModelNumber:   d.Model.Hex(),
		SerialHex:     d.Serial.Hex,
		SerialDecimal: d.Serial.Decimal(),
		MonzaSeriesID: d.MonzaSeriesID,
		IsImpinj:      d.IsImpinj(),
		IsNXPUcode9:   d.IsNXPUcode9(),
	}
}

// ComputeSerial decodes the TID and returns its serial in the requested format:
// a string for FormatHex, a uint64 for FormatDecimal. The format is matched
// case-insensitively.
func ComputeSerial(text, format string) (interface{}, error) {
	descriptor, err := Parse(text)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case FormatHex:
		return descriptor.Serial.Hex, nil
	case FormatDecimal:
		return descriptor.Serial.Decimal(), nil
	}
	return nil, errors.Wrapf(ErrFormatArgument, "received '%s'", format)
}

// ResolveVendorName returns the vendor display name of the TID.
func ResolveVendorName(text string) (string, error) {
	raw, err := Normalize(text)
	if err != nil {
		return "", err
	}
	return VendorName(raw), nil
}

// ResolveModelName returns the model display name of the TID.
func ResolveModelName(text string) (string, error) {
	raw, err := Normalize(text)
	if err != nil {
		return "", err
	}
	return ResolveModel(raw).Name, nil
}

// Validate returns true if the text is a well formed TID. It never fails.
func Validate(text string) bool {
	_, err := Normalize(text)
	return err == nil
}
