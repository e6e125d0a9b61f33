/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
	log "github.com/sirupsen/logrus"
)

// Logger logs every request at debug level once it completes
func Logger(next web.Handler) web.Handler {
	return web.Handler(func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
		values := web.Values(ctx)

		err := next(ctx, writer, request)

		log.WithFields(log.Fields{
			"Method":     request.Method,
			"RequestURI": request.RequestURI,
			"TraceID":    values.TraceID,
			"Duration":   time.Since(values.StartTime).String(),
			"Failed":     err != nil,
		}).Debug("Request completed")
		return err
	})
}
