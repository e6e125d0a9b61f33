/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package cli

import (
	"fmt"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/healthcheck"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrUnhealthy occurs when the TID service does not answer its health index
var ErrUnhealthy = errors.New("TID service is not healthy")

// healthcheckFunc is replaced in tests
var healthcheckFunc = healthcheck.Healthcheck

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that a local TID service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if healthcheckFunc(port) != 0 {
				return errors.Wrapf(ErrUnhealthy, "port %s", port)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8080", "port of the TID service")
	return cmd
}
