/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/batch"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/report"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/routes/schemas"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var contentTypes = map[string]string{
	report.FormatCSV:  "text/csv",
	report.FormatYAML: "application/x-yaml",
	report.FormatText: "text/plain; charset=utf-8",
}

// readAndValidateRequest decodes the body into v. When the body does not match
// the schema the returned interface holds the schema errors to send back.
func readAndValidateRequest(request *http.Request, schema string, v interface{}) (interface{}, error) {
	// Reading request
	body, err := io.ReadAll(request.Body)
	if err != nil {
		if errors.Cause(err) == web.ErrEntityTooLarge {
			return nil, err
		}
		return nil, errors.Wrap(web.ErrValidation, err.Error())
	}

	if err = json.Unmarshal(body, v); err != nil && len(body) > 0 {
		return nil, errors.Wrap(web.ErrValidation, err.Error())
	}

	// Validate json against schema
	schemaValidatorResult, err := schemas.ValidateSchemaRequest(body, schema)
	if err != nil {
		return nil, err
	}
	if !schemaValidatorResult.Valid() {
		result := schemas.BuildErrorsString(schemaValidatorResult.Errors())
		return result, nil
	}

	return nil, nil
}

// parseLimit reads the limit query parameter, capped at maxSize
func parseLimit(value string, maxSize int) (int, error) {
	if value == "" {
		return maxSize, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, errors.Wrapf(web.ErrInvalidInput, "limit must be a positive integer, got '%s'", value)
	}
	if maxSize > 0 && limit > maxSize {
		return maxSize, nil
	}
	return limit, nil
}

// writeReport sends the batch result rendered by the report package
func writeReport(ctx context.Context, writer http.ResponseWriter, result batch.Result, format string) error {
	var buffer bytes.Buffer
	if err := report.Write(&buffer, result, format); err != nil {
		return errors.Wrap(web.ErrInvalidInput, err.Error())
	}

	writer.Header().Set("Content-Type", contentTypes[strings.ToLower(format)])
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(buffer.Bytes()); err != nil {
		log.WithFields(log.Fields{
			"Method":  "writeReport",
			"TraceID": web.Values(ctx).TraceID,
			"Error":   err.Error(),
		}).Error("Error writing report response")
	}
	return nil
}
