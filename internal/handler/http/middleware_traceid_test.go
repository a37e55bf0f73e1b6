package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Helpers ----

func serveWithTraceID(h *Handler, headers map[string]string, next http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rr, req)
	return rr
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// ---- Table: X-Trace-ID response header ----

func TestWithTraceID_TableTest(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantTraceID   string
		wantGenerated bool
	}{
		{
			name:        "trace ID from request header is reused",
			headers:     map[string]string{traceIDHeader: "my-custom-trace-id"},
			wantTraceID: "my-custom-trace-id",
		},
		{
			name:        "request ID is used when trace ID is absent",
			headers:     map[string]string{requestIDHeader: "req-42"},
			wantTraceID: "req-42",
		},
		{
			name:        "trace ID wins over request ID",
			headers:     map[string]string{traceIDHeader: "trace-1", requestIDHeader: "req-42"},
			wantTraceID: "trace-1",
		},
		{
			name:          "no header, UUID v7 generated",
			wantGenerated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWithTraceID(newTestHandler(), tt.headers, okHandler)

			got := rr.Header().Get(traceIDHeader)
			require.NotEmpty(t, got)
			assert.Equal(t, http.StatusOK, rr.Code)

			if !tt.wantGenerated {
				assert.Equal(t, tt.wantTraceID, got)
				return
			}

			id, err := uuid.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(7), id.Version())
		})
	}
}

func TestWithTraceID_GeneratesUniqueIDs(t *testing.T) {
	h := newTestHandler()
	seen := make(map[string]struct{})

	for range 100 {
		id := serveWithTraceID(h, nil, okHandler).Header().Get(traceIDHeader)
		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate trace ID generated: %s", id)
		seen[id] = struct{}{}
	}
}

// ---- Trace ID reaches the request logger ----

func TestWithTraceID_TraceIDInContextLogger(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler()
	h.logger = &logger.Logger{Logger: zerolog.New(&buf)}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromRequest(r).Info().Msg("inside")
		w.WriteHeader(http.StatusOK)
	})

	serveWithTraceID(h, map[string]string{traceIDHeader: "trace-context-test"}, next)

	assert.Contains(t, buf.String(), `"trace_id":"trace-context-test"`)
}
