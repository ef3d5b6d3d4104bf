package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Configure("debug", "console")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Configure("nonsense", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Configure("", "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestAttachLoggingTransport(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer CliLogger()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	client := &http.Client{}
	AttachLoggingTransport(client)

	resp, err := client.Get(srv.URL + "/sites/hr")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, buf.String(), "GET /sites/hr")
}

func TestAttachLoggingTransport_RedactsCredentials(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer CliLogger()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acs-secret-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	client := &http.Client{}
	AttachLoggingTransport(client)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/sites/hr", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer acs-secret-token")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotContains(t, buf.String(), "acs-secret-token")
	assert.Contains(t, buf.String(), "Bearer [REDACTED]")
}
