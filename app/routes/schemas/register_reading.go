/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// RegisterReadingSchema is the body of POST /readings
const RegisterReadingSchema = `{
	"type": "object",
	"properties": {
		"tid": {
			"type": "string",
			"minLength": 1,
			"maxLength": 128
		},
		"reader_id": {
			"type": "string",
			"minLength": 1
		},
		"location": {
			"type": "string",
			"minLength": 1
		},
		"signal_strength": {
			"type": "integer"
		},
		"antenna_id": {
			"type": "integer",
			"minimum": 0
		},
		"timestamp": {
			"type": "string",
			"format": "date-time"
		}
	},
	"required": ["tid", "reader_id", "location"],
	"additionalProperties": false
}`
