/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command
func NewParseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <tid>...",
		Short: "Decode TIDs",
		Long: `Decode one or more TIDs and print vendor, model, serial and Monza series id.

Malformed TIDs are reported on stderr; the command exits non-zero if any was found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text|json)")
	return cmd
}

func runParse(out, errOut io.Writer, args []string, output string) error {
	output = strings.ToLower(output)
	if output != outputText && output != outputJSON {
		return errors.Errorf("invalid output %q: must be text or json", output)
	}

	descriptors := make([]tid.Descriptor, 0, len(args))
	failed := 0
	for _, arg := range args {
		descriptor, err := tid.Parse(arg)
		if err != nil {
			failed++
			fmt.Fprintf(errOut, "%q: %v\n", arg, err)
			log.WithFields(log.Fields{
				"Method": "parse",
				"Input":  arg,
			}).Debugf("%+v", err)
			continue
		}
		descriptors = append(descriptors, descriptor)
	}

	if output == outputJSON {
		data, err := json.MarshalIndent(descriptors, "", "  ")
		if err != nil {
			return errors.Wrap(err, "unable to encode descriptors")
		}
		fmt.Fprintln(out, string(data))
	} else {
		for i, descriptor := range descriptors {
			if i > 0 {
				fmt.Fprintln(out)
			}
			writeDescriptor(out, descriptor)
		}
	}

	if failed > 0 {
		return ErrInvalidTIDs
	}
	return nil
}

func writeDescriptor(out io.Writer, descriptor tid.Descriptor) {
	fmt.Fprintf(out, "TID:           %s\n", descriptor.TID())
	fmt.Fprintf(out, "Vendor:        %s\n", descriptor.Vendor)
	fmt.Fprintf(out, "Model:         %s (0x%s)\n", descriptor.Model.Name, descriptor.Model.Hex())
	fmt.Fprintf(out, "Serial hex:    %s\n", descriptor.Serial.Hex)
	fmt.Fprintf(out, "Serial:        %d\n", descriptor.Serial.Decimal())
	fmt.Fprintf(out, "Impinj:        %t\n", descriptor.IsImpinj())
	fmt.Fprintf(out, "NXP UCODE 9:   %t\n", descriptor.IsNXPUcode9())
	if descriptor.MonzaSeriesID != nil {
		fmt.Fprintf(out, "Monza series:  %d\n", *descriptor.MonzaSeriesID)
	}
}

// NewSerialCommand creates the serial command
func NewSerialCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "serial <tid>",
		Short: "Print the serial number of a TID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serial, err := tid.ComputeSerial(args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), serial)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", tid.FormatHex, "serial format (hex|decimal)")
	return cmd
}

// NewSerial38Command creates the serial38 command
func NewSerial38Command() *cobra.Command {
	var binary bool

	cmd := &cobra.Command{
		Use:   "serial38 <tid>",
		Short: "Print the 38-bit serial number of a Monza R6 TID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tid.Normalize(args[0])
			if err != nil {
				return err
			}
			if binary {
				digits, err := tid.Serial38Binary(raw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), digits)
				return nil
			}
			serial, err := tid.Serial38(raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), serial.Value)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&binary, "binary", "b", false, "print the serial as 38 binary digits")
	return cmd
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tid>...",
		Short: "Check that TIDs are well formed",
		Long: `Print "valid" or "invalid" for each TID. The command exits non-zero if any
TID is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, arg := range args {
				if tid.Validate(arg) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tvalid\n", tid.Canonicalize(arg))
					continue
				}
				invalid++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid\n", arg)
			}
			if invalid > 0 {
				return ErrInvalidTIDs
			}
			return nil
		},
	}
}
