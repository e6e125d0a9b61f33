/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

func errorHandler(message string, err error, errorGauge metrics.Gauge) {
	if err != nil {
		if errorGauge != nil {
			errorGauge.Update(1)
		}
		logrus.WithFields(logrus.Fields{
			"Method": "jsonrpc.Decode",
			"Error":  fmt.Sprintf("%+v", err),
		}).Error(message)
	}
}

// Decode reads a single JSON-RPC message from reader into js and validates it.
// errorGauge, when not nil, is set on failure.
func Decode(reader io.Reader, js Message, errorGauge metrics.Gauge) error {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	if err := decoder.Decode(js); err != nil {
		err = errors.Wrap(err, "error decoding jsonrpc message")
		errorHandler("error decoding jsonrpc message", err, errorGauge)
		return err
	}

	if err := js.Validate(); err != nil {
		errorHandler("error validating jsonrpc message", err, errorGauge)
		return err
	}

	return nil
}
