/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// BatchTidsSchema is the body of POST /tids/batch
const BatchTidsSchema = `{
	"type": "object",
	"properties": {
		"tids": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "string",
				"minLength": 1,
				"maxLength": 128
			}
		},
		"deduplicate": {
			"type": "boolean"
		},
		"format": {
			"type": "string",
			"enum": ["json", "csv", "yaml", "text"]
		}
	},
	"required": ["tids"],
	"additionalProperties": false
}`
