/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package middlewares

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		return err
	}
	web.Respond(ctx, writer, string(body), http.StatusOK)
	return nil
}

func TestBodylimiterAcceptsSmallBody(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/tid/batch", strings.NewReader(`{"tids":[]}`))
	recorder := httptest.NewRecorder()

	web.Handler(BodylimiterSize(64, echo)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "tids")
}

func TestBodylimiterRejectsByContentLength(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/tid/batch", strings.NewReader(strings.Repeat("a", 100)))
	request.Header.Set("Content-Length", "100")
	recorder := httptest.NewRecorder()

	web.Handler(BodylimiterSize(64, echo)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}

func TestBodylimiterRejectsByActualSize(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/tid/batch", strings.NewReader(strings.Repeat("a", 100)))
	request.Header.Del("Content-Length")
	recorder := httptest.NewRecorder()

	web.Handler(BodylimiterSize(64, echo)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}

func TestBodylimiterIgnoresGet(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/tid/E2801190000000000000000A", nil)
	recorder := httptest.NewRecorder()

	web.Handler(BodylimiterSize(1, echo)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCORS(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	web.Handler(CORS("http://localhost:3000", echo)).ServeHTTP(recorder, request)
	assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRecover(t *testing.T) {
	panics := func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
		panic("boom")
	}
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	require.NotPanics(t, func() {
		web.Handler(Logger(Recover(panics))).ServeHTTP(recorder, request)
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
