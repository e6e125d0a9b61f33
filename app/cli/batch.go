/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package cli

import (
	"io"
	"os"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/batch"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/report"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// BatchOptions holds the flags of the batch command
type BatchOptions struct {
	File        string
	Output      string
	Workers     int
	Deduplicate bool
}

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	opts := &BatchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [tid]...",
		Short: "Decode a list of TIDs concurrently and print a report",
		Long: `Decode the TIDs read from --file, one per line, plus any given as arguments.
Blank lines and lines starting with # are skipped. Use --file - to read stdin.

TIDs that fail to decode are listed in the report and do not stop the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file with one TID per line, - for stdin")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", report.FormatText, "report format (json|csv|yaml|text)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 4, "number of concurrent decoders")
	cmd.Flags().BoolVar(&opts.Deduplicate, "dedup", false, "decode TIDs that normalize to the same value once")
	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, args []string) error {
	if !report.IsFormat(opts.Output) {
		return errors.Wrapf(report.ErrUnknownFormat, "%q", opts.Output)
	}

	tids, err := loadTIDs(cmd.InOrStdin(), opts.File)
	if err != nil {
		return err
	}
	tids = append(tids, args...)
	if len(tids) == 0 {
		return errors.New("no TIDs to decode: use --file or pass TIDs as arguments")
	}

	result, err := batch.Process(cmd.Context(), tids, batch.Options{
		Workers:     opts.Workers,
		Deduplicate: opts.Deduplicate,
	})
	if err != nil {
		return errors.Wrap(err, "batch interrupted")
	}

	log.WithFields(log.Fields{
		"Method":    "batch",
		"Total":     result.Total,
		"Succeeded": result.Succeeded,
		"Failed":    result.Failed,
		"Duration":  result.Duration,
	}).Info("Batch complete")

	return report.Write(cmd.OutOrStdout(), result, opts.Output)
}

func loadTIDs(stdin io.Reader, file string) ([]string, error) {
	switch file {
	case "":
		return nil, nil
	case "-":
		return report.LoadTIDs(stdin)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", file)
	}
	defer f.Close()
	return report.LoadTIDs(f)
}
