/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package jsonrpc

import "github.com/pkg/errors"

// Version is the only JSON-RPC version accepted
const Version = "2.0"

// Message is a decodable JSON-RPC message
type Message interface {
	Validate() error
}

// Notification is the envelope of a JSON-RPC notification, a request without an id
type Notification struct {
	Version string `json:"jsonrpc"`
	Method  string `json:"method"`
}

// Validate checks the envelope
func (notification *Notification) Validate() error {
	if notification.Version != Version {
		return errors.Errorf("invalid jsonrpc version %q", notification.Version)
	}
	if notification.Method == "" {
		return errors.New("missing method field")
	}
	return nil
}
