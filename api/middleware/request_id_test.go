package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestRequestIDKeepsValidInboundID(t *testing.T) {
	inbound := uuid.NewString()

	handler := RequestID(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, inbound)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(requestIDHeader); got != inbound {
		t.Fatalf("request id = %q, want inbound %q", got, inbound)
	}
}

func TestRequestIDReplacesNonUUIDValues(t *testing.T) {
	for _, inbound := range []string{"", "not-a-uuid", "12345", "'; DROP TABLE orders;--"} {
		handler := RequestID(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set(requestIDHeader, inbound)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		got := rr.Header().Get(requestIDHeader)
		if got == inbound {
			t.Fatalf("inbound %q was kept verbatim", inbound)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("replacement id %q is not a uuid: %v", got, err)
		}
	}
}
