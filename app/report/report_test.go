/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/batch"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult(t *testing.T) batch.Result {
	t.Helper()
	result, err := batch.Process(context.Background(), []string{
		"E2801190000000000000000A",
		"E2806915000000000000000E",
		"bad",
		"E2801190000000000000C000",
	}, batch.Options{Workers: 2})
	require.NoError(t, err)
	return result
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(t), FormatText))

	g := goldie.New(t)
	g.Assert(t, "text_report", buf.Bytes())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(t), "CSV"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"0", "E2801190000000000000000A", "Impinj Monza R6", "Impinj M750", "190",
		"0000000000", "0", "true", "false", "0", "",
	}, records[1])
	assert.Equal(t, []string{
		"1", "E2806915000000000000000E", "NXP UCODE 9", "NXP UCODE 9", "915",
		"000000000E", "14", "false", "true", "", "",
	}, records[2])
	assert.Equal(t, "bad", records[3][1])
	assert.Equal(t, "", records[3][6])
	assert.Contains(t, records[3][10], "24 hexadecimal characters")
	assert.Equal(t, "3", records[4][9])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(t), FormatJSON))

	var decoded struct {
		Total int `json:"total"`
		Items []struct {
			Index      int                    `json:"index"`
			Descriptor map[string]interface{} `json:"descriptor"`
			Error      string                 `json:"error"`
		} `json:"items"`
		Stats batch.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4, decoded.Total)
	require.Len(t, decoded.Items, 4)
	assert.Equal(t, "NXP UCODE 9", decoded.Items[1].Descriptor["vendor"])
	assert.Nil(t, decoded.Items[2].Descriptor)
	assert.Equal(t, 2, decoded.Stats.Vendors["Impinj Monza R6"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(t), FormatYAML))

	var decoded yamlReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4, decoded.Total)
	assert.Equal(t, 3, decoded.Succeeded)
	assert.Equal(t, 75.0, decoded.SuccessRate)
	assert.Equal(t, map[string]int{"Series_0": 1, "Series_3": 1}, decoded.Stats.ImpinjSeries)
	require.Len(t, decoded.Items, 4)
	assert.Equal(t, "000000000E", decoded.Items[1].SerialHex)
	assert.Equal(t, uint64(14), decoded.Items[1].SerialDecimal)
	assert.Nil(t, decoded.Items[1].MonzaSeriesID)
	require.NotNil(t, decoded.Items[3].MonzaSeriesID)
	assert.Equal(t, uint8(3), *decoded.Items[3].MonzaSeriesID)
	assert.NotEmpty(t, decoded.Items[2].Error)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, batch.Result{}, "xml")
	require.Error(t, err)
	assert.Equal(t, ErrUnknownFormat, errors.Cause(err))
	assert.False(t, IsFormat("xml"))
	assert.True(t, IsFormat("YAML"))
}

func TestLoadTIDs(t *testing.T) {
	input := `# warehouse 3
E2801190000000000000000A

  e2-80-69-15-00-00-00-00-00-00-00-0e
# trailing comment
not a tid
`
	tids, err := LoadTIDs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"E2801190000000000000000A",
		"e2-80-69-15-00-00-00-00-00-00-00-0e",
		"not a tid",
	}, tids)

	tids, err = LoadTIDs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tids)
}
