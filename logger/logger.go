package logger

import (
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	CliLogger()
}

// SetWriter configures a log writer for the global logger
func SetWriter(w io.Writer) {
	log.Logger = log.Output(w)
}

// UseJsonLogging switches the global logger to JSON lines on stderr.
func UseJsonLogging() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// CliLogger writes human readable logs to stderr.
func CliLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// Configure applies the level and format flags. Unknown levels fall back to info.
func Configure(level string, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		UseJsonLogging()
	} else {
		CliLogger()
	}
}

type loggingTransport struct {
	transport http.RoundTripper
}

func (t *loggingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		// bodies may carry client secrets, so only the head is dumped
		dump, err := httputil.DumpRequestOut(redacted(request), false)
		if err == nil {
			log.Trace().Msg(string(dump))
		}
	}
	return t.transport.RoundTrip(request)
}

// redactedHeaders never reach the trace log.
var redactedHeaders = []string{"Authorization", "Cookie"}

func redacted(request *http.Request) *http.Request {
	clone := request.Clone(request.Context())
	for _, h := range redactedHeaders {
		v := clone.Header.Get(h)
		if v == "" {
			continue
		}
		if scheme, _, ok := strings.Cut(v, " "); ok {
			clone.Header.Set(h, scheme+" [REDACTED]")
		} else {
			clone.Header.Set(h, "[REDACTED]")
		}
	}
	return clone
}

// AttachLoggingTransport traces every outgoing request of client.
func AttachLoggingTransport(client *http.Client) {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = &loggingTransport{
		transport: base,
	}
}
