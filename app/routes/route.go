/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/config"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/routes/handlers"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/tag"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/middlewares"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
)

// Route struct holds attributes to declare routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc web.Handler
}

// NewRouter creates the routes for GET, POST and DELETE. store may be nil, in
// which case the inventory endpoints answer with a server error.
func NewRouter(store *tag.Store) *mux.Router {

	tid := handlers.TID{
		Store:        store,
		MaxSize:      config.AppConfig.ResponseLimit,
		BatchWorkers: config.AppConfig.BatchWorkers,
		BatchMaxSize: config.AppConfig.BatchMaxSize,
	}

	var routes = []Route{
		//swagger:operation GET / default Healthcheck
		//
		// Healthcheck Endpoint
		//
		// Endpoint that is used to determine if the application is ready to take web requests
		//
		// ---
		// consumes:
		// - application/json
		//
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//
		{
			"Index",
			"GET",
			"/",
			tid.Index,
		},
		//swagger:route POST /tid/batch tid postBatch
		//
		// Decodes a Batch of TIDs
		//
		// Decodes every TID of the body concurrently. A TID that fails to decode is reported
		// with its error and does not fail the request.<br><br>
		//
		// Example body:
		// ```
		// {
		// &#8195"tids": ["E2801190000000000000000A", "E2806915000000000000000E"],
		// &#8195"deduplicate": true,
		// &#8195"format": "json"
		// }
		// ```
		//
		// + tids        - TIDs to decode, each 24 hex digits with optional spaces or hyphens
		// + deduplicate - Decode TIDs that normalize to the same value only once
		// + format      - json (default), csv, yaml or text
		//
		//     Consumes:
		//     - application/json
		//
		//     Produces:
		//     - application/json
		//     - text/csv
		//     - application/x-yaml
		//     - text/plain
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:batchResult
		//       400: schemaValidation
		//       413: internalError
		//
		{
			"PostBatch",
			"POST",
			"/tid/batch",
			tid.PostBatch,
		},
		//swagger:route GET /tid/{tid} tid getTid
		//
		// Decodes a TID
		//
		// Returns the vendor, model, serial and Monza series id of a 96-bit TID.<br><br>
		//
		// Example result:
		// ```
		// {
		// &#8195"tid": "E2801190000000000000000A",
		// &#8195"vendor": "Impinj Monza R6",
		// &#8195"modelName": "Impinj M750",
		// &#8195"modelNumber": "190",
		// &#8195"serialHex": "0000000000",
		// &#8195"serialDecimal": 0,
		// &#8195"monzaSeriesId": 0,
		// &#8195"isImpinj": true,
		// &#8195"isNxpUcode9": false
		// }
		// ```
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:descriptor
		//       400: internalError
		//
		{
			"GetTid",
			"GET",
			"/tid/{tid}",
			tid.GetTid,
		},
		//swagger:route GET /tid/{tid}/serial tid getSerial
		//
		// Retrieves the Serial of a TID
		//
		// /tid/{tid}/serial?format=hex     - 10 uppercase hex digits (default)
		// /tid/{tid}/serial?format=decimal - unsigned integer
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:serial
		//       400: internalError
		//
		{
			"GetSerial",
			"GET",
			"/tid/{tid}/serial",
			tid.GetSerial,
		},
		//swagger:route GET /tid/{tid}/serial38 tid getSerial38
		//
		// Retrieves the 38-bit Serial of a Monza R6 TID
		//
		// Fails with 400 when the TID header is not a valid EPC Gen2 XTID header, or the tag
		// is not a Monza R6.
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:serial38
		//       400: internalError
		//
		{
			"GetSerial38",
			"GET",
			"/tid/{tid}/serial38",
			tid.GetSerial38,
		},
		//swagger:route GET /tid/{tid}/validate tid getValidate
		//
		// Validates a TID
		//
		// Reports whether the text is 24 hex digits once spaces and hyphens are removed.
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:validate
		//
		{
			"GetValidate",
			"GET",
			"/tid/{tid}/validate",
			tid.GetValidate,
		},
		//swagger:route POST /inventory/tags tags postReading
		//
		// Registers a Tag Reading
		//
		// Decodes the TID and records the reading. The first reading of a TID creates its
		// record; later ones increment read_count and update last_seen and location.<br><br>
		//
		// Example body:
		// ```
		// {
		// &#8195"tid": "E2801190000000000000000A",
		// &#8195"reader_id": "RSP-150000",
		// &#8195"location": "Dock-1",
		// &#8195"signal_strength": -52,
		// &#8195"antenna_id": 1,
		// &#8195"timestamp": "2019-03-04T10:30:00Z"
		// }
		// ```
		//
		//     Consumes:
		//     - application/json
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       201: body:Tag
		//       400: schemaValidation
		//       500: internalError
		//
		{
			"PostReading",
			"POST",
			"/inventory/tags",
			tid.PostReading,
		},
		//swagger:route GET /inventory/tags tags getTags
		//
		// Retrieves Tag Data
		//
		// /inventory/tags
		// /inventory/tags?vendor=impinj  - Case-insensitive vendor substring
		// /inventory/tags?model=ucode    - Case-insensitive model substring
		// /inventory/tags?location=Dock-1 - Exact location of the latest reading
		// /inventory/tags?limit=10       - At most 10 records, never more than the response limit
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:resultsResponse
		//       400: internalError
		//       500: internalError
		//
		{
			"GetTags",
			"GET",
			"/inventory/tags",
			tid.GetTags,
		},
		//swagger:route GET /inventory/tags/{tid} tags getTag
		//
		// Retrieves One Tag
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:Tag
		//       400: internalError
		//       404: internalError
		//       500: internalError
		//
		{
			"GetTag",
			"GET",
			"/inventory/tags/{tid}",
			tid.GetTag,
		},
		//swagger:route DELETE /inventory/tags/{tid} tags deleteTag
		//
		// Deletes a Tag and its Readings
		//
		//     Schemes: http
		//
		//     Responses:
		//       204: description:No Content
		//       400: internalError
		//       404: internalError
		//       500: internalError
		//
		{
			"DeleteTag",
			"DELETE",
			"/inventory/tags/{tid}",
			tid.DeleteTag,
		},
		//swagger:route GET /inventory/report tags getReport
		//
		// Retrieves the Inventory Report
		//
		// Totals, vendor, model and location distributions, and the 10 most read tags.
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:report
		//       500: internalError
		//
		{
			"GetReport",
			"GET",
			"/inventory/report",
			tid.GetReport,
		},
		//swagger:route POST /inventory/data tags postInventoryData
		//
		// Ingests an RSP inventory_data Notification
		//
		// Registers every tag read of the notification, using device_id as the reader and
		// facility_id as the location. Reads with a malformed TID are skipped and counted.
		//
		//     Consumes:
		//     - application/json
		//
		//     Produces:
		//     - application/json
		//
		//     Schemes: http
		//
		//     Responses:
		//       200: body:ingestResponse
		//       400: internalError
		//       500: internalError
		//
		{
			"PostInventoryData",
			"POST",
			"/inventory/data",
			tid.PostInventoryData,
		},
	}

	router := mux.NewRouter()
	for _, route := range routes {

		var handler = route.HandlerFunc
		handler = middlewares.Recover(handler)
		handler = middlewares.Logger(handler)
		handler = middlewares.Bodylimiter(handler)
		if config.AppConfig.EnableCORS {
			handler = middlewares.CORS(config.AppConfig.CORSOrigin, handler)
		}

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}

	if config.AppConfig.EnableCORS {
		router.Methods(http.MethodOptions).HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Access-Control-Allow-Origin", config.AppConfig.CORSOrigin)
			writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
			writer.WriteHeader(http.StatusNoContent)
		})
	}

	return router
}
