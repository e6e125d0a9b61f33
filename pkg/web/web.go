/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

// KeyValues is how request values are stored and retrieved.
const KeyValues ctxKey = 1

// ContextValues carries request information through the handler chain.
type ContextValues struct {
	Method     string
	RequestURI string
	TraceID    string
	StartTime  time.Time
}

// Handler is the signature of every route handler and middleware.
type Handler func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error

// ServeHTTP implements http.Handler. It seeds the request context with a new
// trace id and converts a returned error into a JSON error response.
func (handler Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	values := ContextValues{
		Method:     request.Method,
		RequestURI: request.RequestURI,
		TraceID:    uuid.New().String(),
		StartTime:  time.Now(),
	}
	ctx := context.WithValue(request.Context(), KeyValues, &values)

	if err := handler(ctx, writer, request); err != nil {
		Error(ctx, writer, err)
	}
}

// Values returns the request values stored in ctx. A context that did not go
// through ServeHTTP yields an empty set of values.
func Values(ctx context.Context) *ContextValues {
	if values, ok := ctx.Value(KeyValues).(*ContextValues); ok {
		return values
	}
	return &ContextValues{}
}
