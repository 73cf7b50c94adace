package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/louisbranch/dicetower/internal/platform/id"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
)

// RequestIDHeader carries the request correlation id over HTTP.
const RequestIDHeader = "X-Request-Id"

// requestIDMiddleware reuses a caller request id or generates one, echoes it
// in the response, and stores it in the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			if generated, err := id.NewID(); err == nil {
				requestID = generated
			}
		}
		if requestID != "" {
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(platformgrpc.WithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}

// accessLogMiddleware logs one line per request.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("http %s %s request=%s status=%d bytes=%d duration=%s",
			r.Method,
			r.URL.Path,
			platformgrpc.RequestIDFromContext(r.Context()),
			ww.Status(),
			ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond),
		)
	})
}
