/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"time"

	"github.com/pkg/errors"
)

// InventoryDataMethod is the method of the notification a reader sends with
// the tags it read during a period
const InventoryDataMethod = "inventory_data"

// InventoryData is a batch of tag reads reported by one reader
type InventoryData struct {
	Notification                     // embed
	Params       InventoryDataParams `json:"params"`
}

type InventoryDataParams struct {
	SentOn         int64       `json:"sent_on"`
	Period         int         `json:"period"`
	DeviceId       string      `json:"device_id"`
	Location       GpsLocation `json:"location"`
	FacilityId     string      `json:"facility_id"`
	MotionDetected bool        `json:"motion_detected"`
	Data           []TagRead   `json:"data"`
}

type TagRead struct {
	Epc        string `json:"epc"`
	Tid        string `json:"tid"`
	AntennaId  int    `json:"antenna_id"`
	LastReadOn int64  `json:"last_read_on"`
	Rssi       int    `json:"rssi"`
	Phase      int    `json:"phase"`
	Frequency  int    `json:"frequency"`
}

type GpsLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// ReadTime converts LastReadOn, milliseconds since the epoch, to a time.
// A missing value yields the zero time.
func (read TagRead) ReadTime() time.Time {
	if read.LastReadOn <= 0 {
		return time.Time{}
	}
	return time.Unix(0, read.LastReadOn*int64(time.Millisecond)).UTC()
}

func (data *InventoryData) Validate() error {
	if data.Params.DeviceId == "" {
		return errors.New("missing device_id field")
	}
	if data.Params.FacilityId == "" {
		return errors.New("missing facility_id field")
	}
	if len(data.Params.Data) == 0 {
		return errors.New("missing data field")
	}
	if data.Method != InventoryDataMethod {
		return errors.Errorf("unexpected method %q", data.Method)
	}

	return data.Notification.Validate()
}
