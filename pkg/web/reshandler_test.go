/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(handler Handler) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/tid/E280", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func failWith(err error) Handler {
	return func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
		return err
	}
}

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", errors.Wrap(ErrNotFound, "tag E280"), http.StatusNotFound},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"invalid input", errors.Wrap(ErrInvalidInput, "bad json"), http.StatusBadRequest},
		{"too large", ErrEntityTooLarge, http.StatusRequestEntityTooLarge},
		{"empty tid", tid.ErrEmptyInput, http.StatusBadRequest},
		{"tid length", errors.Wrapf(tid.ErrLength, "got %d characters", 4), http.StatusBadRequest},
		{"tid character", tid.ErrInvalidCharacter, http.StatusBadRequest},
		{"tid structure", tid.ErrStructuralValidation, http.StatusBadRequest},
		{"tid family", tid.ErrUnsupportedFamily, http.StatusBadRequest},
		{"tid format", tid.ErrFormatArgument, http.StatusBadRequest},
		{"db", ErrDBNotConfigured, http.StatusInternalServerError},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := serve(failWith(test.err))
			assert.Equal(t, test.code, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

			var body JSONError
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServerErrorHidesCause(t *testing.T) {
	recorder := serve(failWith(errors.New("password=hunter2")))

	var body JSONError
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.NotContains(t, body.Error, "hunter2")
	assert.NotEmpty(t, body.TraceID)
}

func TestServeHTTPSetsContextValues(t *testing.T) {
	var values *ContextValues
	recorder := serve(func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
		values = Values(ctx)
		Respond(ctx, writer, map[string]string{"ok": "yes"}, http.StatusOK)
		return nil
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, values)
	assert.Equal(t, http.MethodGet, values.Method)
	assert.Equal(t, "/tid/E280", values.RequestURI)
	assert.Len(t, values.TraceID, 36)
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	recorder := httptest.NewRecorder()
	Respond(ctx, recorder, nil, http.StatusNoContent)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	recorder = httptest.NewRecorder()
	Respond(ctx, recorder, nil, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, `"Successful"`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	Respond(ctx, recorder, map[string]int{"count": 2}, http.StatusOK)
	assert.JSONEq(t, `{"count": 2}`, recorder.Body.String())
}
