/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/batch"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/report"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/routes/schemas"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/tag"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/jsonrpc"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

// TID represents the User API method handler set.
type TID struct {
	// Store is the tag registry; the inventory endpoints fail with
	// web.ErrDBNotConfigured while it is nil
	Store *tag.Store
	// MaxSize caps the number of records a list returns
	MaxSize int
	// BatchWorkers is the worker count of POST /tid/batch
	BatchWorkers int
	// BatchMaxSize caps the number of TIDs of POST /tid/batch
	BatchMaxSize int
}

// BatchRequest is the body of POST /tid/batch
type BatchRequest struct {
	TIDs        []string `json:"tids"`
	Deduplicate bool     `json:"deduplicate"`
	Format      string   `json:"format"`
}

// SerialResponse is the body of GET /tid/{tid}/serial
type SerialResponse struct {
	TID    string      `json:"tid"`
	Format string      `json:"format"`
	Serial interface{} `json:"serial"`
}

// Serial38Response is the body of GET /tid/{tid}/serial38
type Serial38Response struct {
	TID      string `json:"tid"`
	Serial38 uint64 `json:"serial38"`
	Hex      string `json:"hex"`
	Binary   string `json:"binary"`
}

// ValidateResponse is the body of GET /tid/{tid}/validate
type ValidateResponse struct {
	TID   string `json:"tid"`
	Valid bool   `json:"valid"`
}

// IngestResponse is the body of POST /inventory/data
type IngestResponse struct {
	Registered int      `json:"registered"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Index is used for Docker Healthcheck commands to indicate
// whether the http server is up and running to take requests
//
//nolint:unparam
func (handler *TID) Index(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	web.Respond(ctx, writer, "TID Service", http.StatusOK)
	return nil
}

// GetTid decodes the TID of the path
// 200 OK, 400 Bad Request
func (handler *TID) GetTid(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.GetTid.Attempt", nil).Update(1)
	mDecodeErr := metrics.GetOrRegisterGauge("TID.GetTid.Decode-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.GetTid.Success", nil)

	descriptor, err := tid.Parse(mux.Vars(request)["tid"])
	if err != nil {
		mDecodeErr.Update(1)
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, descriptor, http.StatusOK)
	return nil
}

// GetSerial returns the serial of the TID as hex text or as a number, chosen by
// the format query parameter. The default format is hex.
// 200 OK, 400 Bad Request
func (handler *TID) GetSerial(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.GetSerial.Attempt", nil).Update(1)
	mDecodeErr := metrics.GetOrRegisterGauge("TID.GetSerial.Decode-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.GetSerial.Success", nil)

	format := request.URL.Query().Get("format")
	if format == "" {
		format = tid.FormatHex
	}

	serial, err := tid.ComputeSerial(mux.Vars(request)["tid"], format)
	if err != nil {
		mDecodeErr.Update(1)
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, SerialResponse{
		TID:    tid.Canonicalize(mux.Vars(request)["tid"]),
		Format: strings.ToLower(format),
		Serial: serial,
	}, http.StatusOK)
	return nil
}

// GetSerial38 returns the 38-bit serial of a Monza R6 tag
// 200 OK, 400 Bad Request
func (handler *TID) GetSerial38(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.GetSerial38.Attempt", nil).Update(1)
	mDecodeErr := metrics.GetOrRegisterGauge("TID.GetSerial38.Decode-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.GetSerial38.Success", nil)

	raw, err := tid.Normalize(mux.Vars(request)["tid"])
	if err != nil {
		mDecodeErr.Update(1)
		return err
	}
	serial, err := tid.Serial38(raw)
	if err != nil {
		mDecodeErr.Update(1)
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, Serial38Response{
		TID:      raw.Hex(),
		Serial38: serial.Value,
		Hex:      serial.Hex,
		Binary:   serial.Binary(),
	}, http.StatusOK)
	return nil
}

// GetValidate reports whether the TID is well formed. It never fails.
// 200 OK
//
//nolint:unparam
func (handler *TID) GetValidate(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	text := mux.Vars(request)["tid"]
	web.Respond(ctx, writer, ValidateResponse{
		TID:   text,
		Valid: tid.Validate(text),
	}, http.StatusOK)
	return nil
}

// PostBatch decodes a list of TIDs concurrently
// 200 OK, 400 Bad Request, 413 Request Entity Too Large
func (handler *TID) PostBatch(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.PostBatch.Attempt", nil).Update(1)
	mProcessRequestErr := metrics.GetOrRegisterGauge("TID.PostBatch.ProcessRequest-Error", nil)
	mValidateRequestErr := metrics.GetOrRegisterGauge("TID.PostBatch.ValidateRequest-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.PostBatch.Success", nil)

	var body BatchRequest

	validationErrors, err := readAndValidateRequest(request, schemas.BatchTidsSchema, &body)
	if err != nil {
		mProcessRequestErr.Update(1)
		return err
	}
	if validationErrors != nil {
		mValidateRequestErr.Update(1)
		web.Respond(ctx, writer, validationErrors, http.StatusBadRequest)
		return nil
	}

	if len(body.TIDs) > handler.BatchMaxSize {
		mValidateRequestErr.Update(1)
		return errors.Wrapf(web.ErrEntityTooLarge, "batch of %d TIDs exceeds the limit of %d",
			len(body.TIDs), handler.BatchMaxSize)
	}

	result, err := batch.Process(ctx, body.TIDs, batch.Options{
		Workers:     handler.BatchWorkers,
		Deduplicate: body.Deduplicate,
	})
	if err != nil {
		mProcessRequestErr.Update(1)
		return errors.Wrap(err, "batch interrupted")
	}

	mSuccess.Update(1)
	if body.Format == "" || body.Format == report.FormatJSON {
		web.Respond(ctx, writer, result, http.StatusOK)
		return nil
	}
	return writeReport(ctx, writer, result, body.Format)
}

// PostReading registers a tag reading in the registry
// 201 Created, 400 Bad Request, 500 Internal
func (handler *TID) PostReading(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.PostReading.Attempt", nil).Update(1)
	mProcessRequestErr := metrics.GetOrRegisterGauge("TID.PostReading.ProcessRequest-Error", nil)
	mValidateRequestErr := metrics.GetOrRegisterGauge("TID.PostReading.ValidateRequest-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.PostReading.Success", nil)

	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	var reading tag.Reading

	validationErrors, err := readAndValidateRequest(request, schemas.RegisterReadingSchema, &reading)
	if err != nil {
		mProcessRequestErr.Update(1)
		return err
	}
	if validationErrors != nil {
		mValidateRequestErr.Update(1)
		web.Respond(ctx, writer, validationErrors, http.StatusBadRequest)
		return nil
	}

	registered, err := handler.Store.RegisterReading(ctx, reading)
	if err != nil {
		mProcessRequestErr.Update(1)
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, registered, http.StatusCreated)
	return nil
}

// GetTags lists the registry, optionally filtered by vendor, model and location
// 200 OK, 400 Bad Request, 500 Internal
func (handler *TID) GetTags(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	// Metrics
	metrics.GetOrRegisterGauge("TID.GetTags.Attempt", nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge("TID.GetTags.Success", nil)
	mRetrieveErr := metrics.GetOrRegisterGauge("TID.GetTags.Retrieve-Error", nil)

	startTime := time.Now()
	defer func() {
		metrics.GetOrRegisterTimer("TID.GetTags.Latency", nil).Update(time.Since(startTime))
	}()

	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	query := request.URL.Query()
	limit, err := parseLimit(query.Get("limit"), handler.MaxSize)
	if err != nil {
		return err
	}

	tags, err := handler.Store.List(ctx, tag.Filter{
		Vendor:   query.Get("vendor"),
		Model:    query.Get("model"),
		Location: query.Get("location"),
		Limit:    limit,
	})
	if err != nil {
		mRetrieveErr.Update(1)
		return errors.Wrap(err, "Error retrieving Tags")
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, tag.Response{Results: tags, Count: len(tags)}, http.StatusOK)
	return nil
}

// GetTag returns the registry record of one TID
// 200 OK, 400 Bad Request, 404 Not Found, 500 Internal
func (handler *TID) GetTag(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	record, err := handler.Store.FindByTid(ctx, mux.Vars(request)["tid"])
	if err != nil {
		return err
	}

	web.Respond(ctx, writer, record, http.StatusOK)
	return nil
}

// DeleteTag removes a tag and its readings from the registry
// 204 No Content, 400 Bad Request, 404 Not Found, 500 Internal
func (handler *TID) DeleteTag(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	if err := handler.Store.Delete(ctx, mux.Vars(request)["tid"]); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"Method":  "DeleteTag",
		"TraceID": web.Values(ctx).TraceID,
		"TID":     tid.Canonicalize(mux.Vars(request)["tid"]),
	}).Info("Tag deleted")

	web.Respond(ctx, writer, nil, http.StatusNoContent)
	return nil
}

// GetReport summarizes the registry
// 200 OK, 500 Internal
func (handler *TID) GetReport(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.GetReport.Attempt", nil).Update(1)
	mRetrieveErr := metrics.GetOrRegisterGauge("TID.GetReport.Retrieve-Error", nil)

	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	summary, err := handler.Store.Report(ctx)
	if err != nil {
		mRetrieveErr.Update(1)
		return errors.Wrap(err, "Error building inventory report")
	}

	web.Respond(ctx, writer, summary, http.StatusOK)
	return nil
}

// PostInventoryData registers every tag read of an RSP inventory_data
// notification. Reads with a malformed TID are counted as failed and do not
// stop the others.
// 200 OK, 400 Bad Request, 500 Internal
func (handler *TID) PostInventoryData(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	metrics.GetOrRegisterGauge("TID.PostInventoryData.Attempt", nil).Update(1)
	mDecodeErr := metrics.GetOrRegisterGauge("TID.PostInventoryData.Decode-Error", nil)
	mReadsErr := metrics.GetOrRegisterGauge("TID.PostInventoryData.Reads-Error", nil)
	mSuccess := metrics.GetOrRegisterGauge("TID.PostInventoryData.Success", nil)

	if handler.Store == nil {
		return web.ErrDBNotConfigured
	}

	var data jsonrpc.InventoryData
	if err := jsonrpc.Decode(request.Body, &data, mDecodeErr); err != nil {
		return errors.Wrap(web.ErrInvalidInput, err.Error())
	}

	var response IngestResponse
	for _, read := range data.Params.Data {
		rssi, antenna := read.Rssi, read.AntennaId
		_, err := handler.Store.RegisterReading(ctx, tag.Reading{
			TID:            read.Tid,
			ReaderID:       data.Params.DeviceId,
			Location:       data.Params.FacilityId,
			SignalStrength: &rssi,
			AntennaID:      &antenna,
			Timestamp:      read.ReadTime(),
		})
		if err != nil {
			if !tid.IsDecodeError(err) {
				return err
			}
			response.Failed++
			response.Errors = append(response.Errors, err.Error())
			continue
		}
		response.Registered++
	}

	if response.Failed > 0 {
		mReadsErr.Update(int64(response.Failed))
		log.WithFields(log.Fields{
			"Method":   "PostInventoryData",
			"DeviceID": data.Params.DeviceId,
			"Failed":   response.Failed,
		}).Warn("Skipped tag reads with malformed TIDs")
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, response, http.StatusOK)
	return nil
}
