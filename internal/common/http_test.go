package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	require.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	require.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Quantity int `json:"quantity"`
	}

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"quantity":3}`},
		{name: "empty", body: ``, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"qty":3}`, status: http.StatusBadRequest},
		{name: "trailing", body: `{"quantity":3}{}`, status: http.StatusBadRequest},
		{name: "too large", body: `{"quantity":` + strings.Repeat("1", MaxBodyBytes) + `}`, status: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst payload
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tc.status == 0 {
				require.NoError(t, err)
				require.Equal(t, 3, dst.Quantity)
				return
			}
			appErr, ok := AsAppError(err)
			require.True(t, ok)
			require.Equal(t, tc.status, appErr.HTTPStatus)
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewAppError(CodeNotFound, "variant not found", http.StatusNotFound, nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"variant not found"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteError(rr, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), CodeInternal)
}
