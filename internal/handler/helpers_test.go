package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/device-lending/backend/internal/handler"
	"github.com/pkordes/device-lending/backend/internal/handler/gen"
)

// newHTTPHandler wires a Server with the given service through the generated
// chi router, the same way main.go does.
func newHTTPHandler(svc handler.DeviceServicer) http.Handler {
	srv := handler.NewServer(svc)
	return gen.Handler(gen.NewStrictHandlerWithOptions(srv, nil, handler.StrictOptions()))
}

// jsonBody marshals v and returns it as an io.Reader for use in test requests.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// decodeError decodes an ErrorResponse body.
func decodeError(t *testing.T, body io.Reader) gen.ErrorResponse {
	t.Helper()
	var resp gen.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
