/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/config"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLoggingLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	levels := map[string]log.Level{
		"error":   log.ErrorLevel,
		"WARN":    log.WarnLevel,
		"info":    log.InfoLevel,
		"Debug":   log.DebugLevel,
		"trace":   log.TraceLevel,
		"verbose": log.InfoLevel,
	}

	for name, level := range levels {
		setLoggingLevel(name)
		assert.Equal(t, level, log.GetLevel(), name)
	}
}

func TestErrorHandlerUpdatesGauge(t *testing.T) {
	gauge := metrics.NewGauge()

	errorHandler("no error", nil, gauge)
	assert.Equal(t, int64(0), gauge.Value())

	errorHandler("failure", errors.New("boom"), gauge)
	assert.Equal(t, int64(1), gauge.Value())

	// a nil gauge is allowed
	errorHandler("failure", errors.New("boom"), nil)
}

func TestNewServer(t *testing.T) {
	config.AppConfig.ServerReadTimeOutSeconds = 10
	config.AppConfig.ServerWriteTimeOutSeconds = 20
	config.AppConfig.ResponseLimit = 100
	config.AppConfig.BatchWorkers = 2
	config.AppConfig.BatchMaxSize = 10

	server := newServer(nil, "8080")
	assert.Equal(t, ":8080", server.Addr)
	assert.Equal(t, 10*time.Second, server.ReadTimeout)
	assert.Equal(t, 20*time.Second, server.WriteTimeout)

	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/tid/E2806915000000000000000E", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "NXP UCODE 9")
}

func TestMetricsLogger(t *testing.T) {
	assert.NotNil(t, metricsLogger())
	initMetrics(0)
}
