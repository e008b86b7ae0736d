package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipString(t *testing.T, input string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return buf.Bytes()
}

func echo() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
}

func TestUngzipRequest(t *testing.T) {
	handler := UngzipRequest(echo())

	request := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(gzipString(t, `{"name":"Архыз"}`)))
	request.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"name":"Архыз"}`, w.Body.String())
}

func TestUngzipRequestRejectsPlainBodyClaimingGzip(t *testing.T) {
	handler := UngzipRequest(echo())

	request := httptest.NewRequest(http.MethodPost, "/cards", strings.NewReader(`{"name":"Архыз"}`))
	request.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGzipResponse(t *testing.T) {
	type tTestCase struct {
		name           string
		acceptEncoding string
		wantGzip       bool
	}
	tests := []tTestCase{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", wantGzip: true},
		{name: "client does not", acceptEncoding: "", wantGzip: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := GzipResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"message":"ok"}`))
			}))

			request := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if test.acceptEncoding != "" {
				request.Header.Set("Accept-Encoding", test.acceptEncoding)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, request)

			if !test.wantGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				assert.Equal(t, `{"message":"ok"}`, w.Body.String())
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			reader, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			body, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, `{"message":"ok"}`, string(body))
		})
	}
}
