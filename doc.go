/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

// TID Service.
//
// Decodes 96-bit RFID Tag Identifiers and keeps an inventory of the tags read.
//
//	Schemes: http
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package main

// Internal Error
//
//swagger:response internalError
type internalError struct {
}
