package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyshade/internal/types"
)

func decodeErrorBody(t *testing.T, body string) APIErrorResponse {
	t.Helper()
	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestError_AppErrorMapsToStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Error(rec, req, types.NewAppError(types.ErrCodeNotFoundPolygon, "polygon not found", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeErrorBody(t, rec.Body.String())
	assert.Equal(t, "not_found_polygon", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestError_WrappedAppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	inner := types.NewAppError(types.ErrCodeValidationVertexCount, "between 3 and 12 vertices", nil)
	Error(rec, req, errors.Join(errors.New("outer"), inner))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestError_GenericErrorHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("pg: connection refused on 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	resp := decodeErrorBody(t, rec.Body.String())
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	cases := map[string]struct {
		body    string
		wantErr bool
	}{
		"valid":         {`{"name":"a"}`, false},
		"empty body":    {``, true},
		"malformed":     {`{"name":`, true},
		"unknown field": {`{"name":"a","extra":1}`, true},
		"two documents": {`{"name":"a"}{"name":"b"}`, true},
		"type mismatch": {`{"name":42}`, true},
		"array not obj": {`[1,2,3]`, true},
		"null is fine":  {`null`, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(rec, req, &dst)
			if tc.wantErr {
				var appErr *types.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, errCodeValidationInvalidJSON, appErr.Code)
				assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	rec := httptest.NewRecorder()

	var dst struct {
		Name string `json:"name"`
	}
	err := DecodeJSON(rec, req, &dst)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "1MB")
}

func TestValidator_StructFailureDetails(t *testing.T) {
	v := NewValidator(nil)

	type form struct {
		Name string `validate:"required"`
		Port int    `validate:"min=1"`
	}

	err := v.Struct(form{})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "required", appErr.Details["name"])
	assert.Equal(t, "min", appErr.Details["port"])

	assert.NoError(t, v.Struct(form{Name: "ok", Port: 8080}))
}
