/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/report"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testM750  = "E2801190000000000000000A"
	testUcode = "E2806915000000000000000E"
	testR6    = "E28011200000FFFFFFFFFF00"
)

var batchInput = strings.Join([]string{
	"# sample reads",
	testM750,
	"",
	testUcode,
	"bad",
	"E2801190000000000000C000",
}, "\n")

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseText(t *testing.T) {
	stdout, _, err := execute(t, "", "parse", testM750, "e2-80-69-15-00-00-00-00-00-00-00-0e")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "parse_text", []byte(stdout))
}

func TestParseJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "parse", "--output", "json", testUcode)
	require.NoError(t, err)

	var descriptors []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, testUcode, descriptors[0]["tid"])
	assert.Equal(t, "NXP UCODE 9", descriptors[0]["vendor"])
	assert.NotContains(t, descriptors[0], "monzaSeriesId")
}

func TestParseReportsInvalid(t *testing.T) {
	stdout, stderr, err := execute(t, "", "parse", testM750, "E280")
	assert.Equal(t, ErrInvalidTIDs, err)
	assert.Contains(t, stdout, testM750)
	assert.Contains(t, stderr, `"E280": got 4 characters`)

	_, _, err = execute(t, "", "parse", "--output", "xml", testM750)
	assert.Error(t, err)

	_, _, err = execute(t, "", "parse")
	assert.Error(t, err)
}

func TestSerial(t *testing.T) {
	stdout, _, err := execute(t, "", "serial", testUcode)
	require.NoError(t, err)
	assert.Equal(t, "000000000E\n", stdout)

	stdout, _, err = execute(t, "", "serial", "--format", "decimal", testUcode)
	require.NoError(t, err)
	assert.Equal(t, "14\n", stdout)

	_, _, err = execute(t, "", "serial", "--format", "octal", testUcode)
	assert.Equal(t, tid.ErrFormatArgument, errors.Cause(err))
}

func TestSerial38(t *testing.T) {
	stdout, _, err := execute(t, "", "serial38", testR6)
	require.NoError(t, err)
	assert.Equal(t, "274877906943\n", stdout)

	stdout, _, err = execute(t, "", "serial38", "--binary", testR6)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("1", 38)+"\n", stdout)

	_, _, err = execute(t, "", "serial38", testM750)
	assert.Equal(t, tid.ErrUnsupportedFamily, errors.Cause(err))

	_, _, err = execute(t, "", "serial38", "--binary", testM750)
	assert.Equal(t, tid.ErrUnsupportedFamily, errors.Cause(err))
}

func TestValidate(t *testing.T) {
	stdout, _, err := execute(t, "", "validate", "e2801190 00000000 0000000a", testUcode)
	require.NoError(t, err)
	assert.Equal(t, testM750+"\tvalid\n"+testUcode+"\tvalid\n", stdout)

	stdout, _, err = execute(t, "", "validate", testM750, "nope")
	assert.Equal(t, ErrInvalidTIDs, err)
	assert.Equal(t, testM750+"\tvalid\nnope\tinvalid\n", stdout)
}

func TestBatchTextFromStdin(t *testing.T) {
	stdout, _, err := execute(t, batchInput, "batch", "--file", "-", "--workers", "2")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "batch_text", []byte(stdout))
}

func TestBatchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tids.txt")
	require.NoError(t, os.WriteFile(path, []byte(batchInput), 0644))

	stdout, _, err := execute(t, "", "batch", "--file", path, "--output", "csv", "--dedup", testM750)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, strings.Join(report.CSVHeader, ","), lines[0])
	// the trailing argument duplicates the first TID of the file
	assert.Len(t, lines, 5)
}

func TestBatchErrors(t *testing.T) {
	_, _, err := execute(t, "", "batch")
	assert.Error(t, err)

	_, _, err = execute(t, "", "batch", "--output", "xml", testM750)
	assert.Equal(t, report.ErrUnknownFormat, errors.Cause(err))

	_, _, err = execute(t, "", "batch", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	defer func(original func(string) int) { healthcheckFunc = original }(healthcheckFunc)

	var gotPort string
	healthcheckFunc = func(port string) int {
		gotPort = port
		return 0
	}
	stdout, _, err := execute(t, "", "health", "--port", "9090")
	require.NoError(t, err)
	assert.Equal(t, "9090", gotPort)
	assert.Equal(t, "healthy\n", stdout)

	healthcheckFunc = func(string) int { return 1 }
	_, _, err = execute(t, "", "health")
	assert.Equal(t, ErrUnhealthy, errors.Cause(err))
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "validate", testM750)
	assert.Error(t, err)
}
