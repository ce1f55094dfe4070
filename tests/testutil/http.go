package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vscpa/backend/internal/interfaces/http/dto"
)

// NewJSONRequest builds a request with body encoded as JSON and an optional bearer token
func NewJSONRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// DecodeResponse parses the API envelope; an empty body yields a zero Response
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	if w.Body.Len() == 0 {
		return resp
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response: %s", w.Body.String())
	return resp
}

// DataAs re-decodes the envelope's data into T
func DataAs[T any](t *testing.T, resp dto.Response) T {
	t.Helper()

	var out T
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out), "Failed to decode data: %s", raw)
	return out
}

// AssertSuccessResponse asserts a successful envelope and returns it
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	resp := DecodeResponse(t, w)
	assert.True(t, resp.Success, "Expected success, got %s", w.Body.String())
	assert.Nil(t, resp.Error, "Expected no error")
	return resp
}

// AssertErrorResponse asserts an error envelope carrying expectedCode
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) dto.Response {
	t.Helper()

	resp := DecodeResponse(t, w)
	assert.False(t, resp.Success, "Expected success to be false")
	require.NotNil(t, resp.Error, "Expected error object in response: %s", w.Body.String())
	assert.Equal(t, expectedCode, resp.Error.Code, "Unexpected error code")
	return resp
}
