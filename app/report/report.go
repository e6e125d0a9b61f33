/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package report renders batch results as json, csv, yaml or plain text, and
// loads TID lists from text files.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/batch"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/slices"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// FormatJSON writes the indented JSON form of the result
	FormatJSON = "json"
	// FormatCSV writes one row per item
	FormatCSV = "csv"
	// FormatYAML writes the result as a YAML document
	FormatYAML = "yaml"
	// FormatText writes a human readable summary
	FormatText = "text"
)

// Formats lists every supported output format
var Formats = []string{FormatJSON, FormatCSV, FormatYAML, FormatText}

// ErrUnknownFormat occurs when the output format is not one of Formats
var ErrUnknownFormat = errors.New("unknown report format")

// CSVHeader is the header row of the csv format
var CSVHeader = []string{
	"index", "tid", "vendor", "model_name", "model_number", "serial_hex", "serial_decimal",
	"is_impinj", "is_nxp_ucode9", "monza_series_id", "error",
}

// row is the flattened form of a batch item shared by the csv and yaml writers
type row struct {
	Index         int    `yaml:"index"`
	TID           string `yaml:"tid"`
	Vendor        string `yaml:"vendor,omitempty"`
	ModelName     string `yaml:"model_name,omitempty"`
	ModelNumber   string `yaml:"model_number,omitempty"`
	SerialHex     string `yaml:"serial_hex,omitempty"`
	SerialDecimal uint64 `yaml:"serial_decimal,omitempty"`
	IsImpinj      bool   `yaml:"is_impinj"`
	IsNXPUcode9   bool   `yaml:"is_nxp_ucode9"`
	MonzaSeriesID *uint8 `yaml:"monza_series_id,omitempty"`
	Error         string `yaml:"error,omitempty"`
}

type yamlReport struct {
	Timestamp   string      `yaml:"timestamp"`
	Total       int         `yaml:"total"`
	Succeeded   int         `yaml:"succeeded"`
	Failed      int         `yaml:"failed"`
	SuccessRate float64     `yaml:"success_rate"`
	Stats       batch.Stats `yaml:"stats"`
	Items       []row       `yaml:"items"`
}

// Write renders result to w in the given format
func Write(w io.Writer, result batch.Result, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeCSV(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	case FormatText:
		return writeText(w, result)
	}
	return errors.Wrapf(ErrUnknownFormat, "%q, expected one of %s", format, strings.Join(Formats, ", "))
}

// IsFormat returns true if format is supported by Write
func IsFormat(format string) bool {
	return slices.Contains(Formats, strings.ToLower(format))
}

// LoadTIDs reads one TID per line. Blank lines and lines starting with # are skipped.
func LoadTIDs(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read TID list")
	}

	return slices.Filter(lines, func(line string) bool {
		return line != "" && !strings.HasPrefix(line, "#")
	}), nil
}

func writeJSON(w io.Writer, result batch.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "unable to encode json report")
}

func writeCSV(w io.Writer, result batch.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "unable to write csv header")
	}

	for _, item := range result.Items {
		r := toRow(item)
		record := []string{
			strconv.Itoa(r.Index), r.TID, r.Vendor, r.ModelName, r.ModelNumber, r.SerialHex, "",
			"", "", "", r.Error,
		}
		if item.Succeeded() {
			record[6] = strconv.FormatUint(r.SerialDecimal, 10)
			record[7] = strconv.FormatBool(r.IsImpinj)
			record[8] = strconv.FormatBool(r.IsNXPUcode9)
		}
		if r.MonzaSeriesID != nil {
			record[9] = strconv.Itoa(int(*r.MonzaSeriesID))
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "unable to write csv row %d", item.Index)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "unable to flush csv report")
}

func writeYAML(w io.Writer, result batch.Result) error {
	document := yamlReport{
		Timestamp:   result.Timestamp.Format(time.RFC3339),
		Total:       result.Total,
		Succeeded:   result.Succeeded,
		Failed:      result.Failed,
		SuccessRate: result.SuccessRate(),
		Stats:       result.Stats,
		Items:       make([]row, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		document.Items = append(document.Items, toRow(item))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(document); err != nil {
		return errors.Wrap(err, "unable to encode yaml report")
	}
	return errors.Wrap(encoder.Close(), "unable to close yaml encoder")
}

func writeText(w io.Writer, result batch.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "TID batch report\n")
	fmt.Fprintf(&b, "Total: %d\n", result.Total)
	fmt.Fprintf(&b, "Succeeded: %d\n", result.Succeeded)
	fmt.Fprintf(&b, "Failed: %d\n", result.Failed)
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", result.SuccessRate())

	writeDistribution(&b, "Vendors", result.Stats.Vendors, result.Succeeded)
	writeDistribution(&b, "Models", result.Stats.Models, result.Succeeded)
	writeDistribution(&b, "Impinj series", result.Stats.ImpinjSeries, result.Succeeded)

	var failures []batch.Item
	for _, item := range result.Items {
		if !item.Succeeded() {
			failures = append(failures, item)
		}
	}
	if len(failures) > 0 {
		fmt.Fprintf(&b, "\nErrors:\n")
		for _, item := range failures {
			fmt.Fprintf(&b, "  [%d] %q: %s\n", item.Index, item.Input, item.Error)
		}
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "unable to write text report")
}

// writeDistribution lists the counts by decreasing value, ties by name
func writeDistribution(b *strings.Builder, title string, counts map[string]int, total int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, key := range keys {
		percent := 0.0
		if total > 0 {
			percent = float64(counts[key]) * 100 / float64(total)
		}
		fmt.Fprintf(b, "  %-24s %5d (%5.1f%%)\n", key, counts[key], percent)
	}
}

func toRow(item batch.Item) row {
	r := row{Index: item.Index, TID: item.Input, Error: item.Error}
	if descriptor := item.Descriptor; descriptor != nil {
		r.TID = descriptor.TID()
		r.Vendor = descriptor.Vendor
		r.ModelName = descriptor.Model.Name
		r.ModelNumber = descriptor.Model.Hex()
		r.SerialHex = descriptor.Serial.Hex
		r.SerialDecimal = descriptor.Serial.Decimal()
		r.IsImpinj = descriptor.IsImpinj()
		r.IsNXPUcode9 = descriptor.IsNXPUcode9()
		r.MonzaSeriesID = descriptor.MonzaSeriesID
	}
	return r
}
