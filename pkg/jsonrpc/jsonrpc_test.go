/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"strings"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryDataJSON = `{
  "jsonrpc": "2.0",
  "method": "inventory_data",
  "params": {
    "sent_on": 1551695400000,
    "period": 500,
    "device_id": "RSP-150000",
    "location": {"latitude": 45.5, "longitude": -122.9, "altitude": 0},
    "facility_id": "Dock-1",
    "motion_detected": false,
    "data": [
      {
        "epc": "30143639F84191AD22900204",
        "tid": "E2801190000000000000000A",
        "antenna_id": 1,
        "last_read_on": 1551695400123,
        "rssi": -520,
        "phase": 31,
        "frequency": 927500
      }
    ]
  }
}`

func TestDecodeInventoryData(t *testing.T) {
	var data InventoryData
	require.NoError(t, Decode(strings.NewReader(inventoryDataJSON), &data, nil))

	assert.Equal(t, Version, data.Version)
	assert.Equal(t, InventoryDataMethod, data.Method)
	assert.Equal(t, "RSP-150000", data.Params.DeviceId)
	assert.Equal(t, "Dock-1", data.Params.FacilityId)
	require.Len(t, data.Params.Data, 1)

	read := data.Params.Data[0]
	assert.Equal(t, "E2801190000000000000000A", read.Tid)
	assert.Equal(t, 1, read.AntennaId)
	assert.Equal(t, -520, read.Rssi)
	assert.Equal(t, time.Date(2019, time.March, 4, 10, 30, 0, 123000000, time.UTC), read.ReadTime())
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":        `{"jsonrpc": "2.0",`,
		"wrong version":    strings.Replace(inventoryDataJSON, `"2.0"`, `"1.0"`, 1),
		"wrong method":     strings.Replace(inventoryDataJSON, `"inventory_data"`, `"heartbeat"`, 1),
		"missing device":   strings.Replace(inventoryDataJSON, `"RSP-150000"`, `""`, 1),
		"missing facility": strings.Replace(inventoryDataJSON, `"Dock-1"`, `""`, 1),
		"empty data":       `{"jsonrpc": "2.0", "method": "inventory_data", "params": {"device_id": "d", "facility_id": "f", "data": []}}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			gauge := metrics.NewGauge()
			var data InventoryData
			assert.Error(t, Decode(strings.NewReader(input), &data, gauge))
			assert.Equal(t, int64(1), gauge.Value())
		})
	}
}

func TestNotificationValidate(t *testing.T) {
	assert.NoError(t, (&Notification{Version: "2.0", Method: "m"}).Validate())
	assert.Error(t, (&Notification{Version: "2.0"}).Validate())
	assert.Error(t, (&Notification{Method: "m"}).Validate())
}

func TestReadTimeMissing(t *testing.T) {
	assert.True(t, TagRead{}.ReadTime().IsZero())
}
