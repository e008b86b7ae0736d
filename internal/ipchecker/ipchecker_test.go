package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)
	assert.True(t, checker.IsTrustedSubnetEmpty())
	assert.False(t, checker.Check(net.ParseIP("127.0.0.1")))

	_, err = New("not-a-cidr")
	assert.Error(t, err)
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	type tTestCase struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}
	tests := []tTestCase{
		{name: "x-real-ip wins", realIP: "10.1.1.1", forwarded: "192.168.0.1", remoteAddr: "1.2.3.4:5", want: "10.1.1.1"},
		{name: "first forwarded address", forwarded: "10.2.2.2, 192.168.0.1", remoteAddr: "1.2.3.4:5", want: "10.2.2.2"},
		{name: "garbage forwarded falls back to remote", forwarded: "garbage", remoteAddr: "1.2.3.4:5", want: "1.2.3.4"},
		{name: "remote address", remoteAddr: "10.3.3.3:1234", want: "10.3.3.3"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			request.RemoteAddr = test.remoteAddr
			if test.realIP != "" {
				request.Header.Set("X-Real-IP", test.realIP)
			}
			if test.forwarded != "" {
				request.Header.Set("X-Forwarded-For", test.forwarded)
			}

			ip, err := checker.GetClientIP(request)
			require.NoError(t, err)
			assert.Equal(t, test.want, ip.String())
		})
	}
}

func TestTrustedSubnetOnly(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	handler := checker.TrustedSubnetOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	inside := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	inside.Header.Set("X-Real-IP", "10.0.0.7")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, inside)
	assert.Equal(t, http.StatusOK, w.Code)

	outside := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	outside.Header.Set("X-Real-IP", "192.168.0.7")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, outside)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"`+ForbiddenMessage+`"}`, w.Body.String())
}
