/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package cli holds the commands of tidctl, the command line TID decoder.
package cli

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// ErrInvalidTIDs is returned by commands that processed every input but found
// at least one malformed TID
var ErrInvalidTIDs = errors.New("one or more TIDs are invalid")

// RootOptions holds the flags shared by every command
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the tidctl command tree
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tidctl",
		Short: "Decode 96-bit RFID Tag Identifiers",
		Long: `tidctl decodes 96-bit RFID TIDs into vendor, model and serial number.

TIDs are 24 hex digits and may contain spaces or hyphens, e.g.
E2801190000000000000000A or e2-80-11-90-00-00-00-00-00-00-00-0a.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), opts.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "logging level (error|warn|info|debug|trace)")

	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(NewSerialCommand())
	cmd.AddCommand(NewSerial38Command())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewBatchCommand())
	cmd.AddCommand(NewHealthCommand())

	return cmd
}

// setupLogging sends logrus output to w, keeping stdout for command output
func setupLogging(w io.Writer, level string) error {
	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	log.SetLevel(parsed)
	return nil
}
