// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		code int
		body string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{"forbidden", Forbidden(errors.New("nope")), http.StatusForbidden, "nope\n"},
		{"not found", NotFound(errors.New("gone")), http.StatusNotFound, "gone\n"},
		{"custom", HTTPError(errors.New("teapot"), http.StatusTeapot), http.StatusTeapot, "teapot\n"},
		{"no cause", HTTPError(nil, http.StatusConflict), http.StatusConflict, ""},
		{"revert", reverts.New("Cannot farm 0"), http.StatusBadRequest, "Cannot farm 0\n"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "boom\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)

	assert.Error(t, ParseJSON(strings.NewReader(`{"a":1,"b":2}`), &v))
	assert.Error(t, ParseJSON(strings.NewReader(`{`), &v))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, M{"a": 1}))
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"a\":1}\n", rec.Body.String())
}
