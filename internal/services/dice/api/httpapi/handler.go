// Package httpapi serves the dice JSON API, roll websocket, and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"github.com/louisbranch/dicetower/internal/services/dice/metrics"
	"github.com/louisbranch/dicetower/internal/services/dice/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MaxBodyBytes caps JSON request bodies and websocket frames.
const MaxBodyBytes = 4 << 10

// NewHandler builds the dice HTTP routes.
func NewHandler(svc *service.Service, m *metrics.Metrics) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Method(http.MethodGet, "/ws", newRollSocket(svc))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "dice-http")
		})
		r.Post("/v1/rolls", h.roll)
		r.Post("/v1/notation:parse", h.parse)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: ErrorBody{Code: "NOT_FOUND", Message: "route not found"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: ErrorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"}})
	})
	return r
}

type handler struct {
	svc *service.Service
}

func (h *handler) roll(w http.ResponseWriter, r *http.Request) {
	var req wire.RollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := h.svc.Roll(r.Context(), req.Expression, req.Mode)
	if err != nil {
		writeError(w, r, service.ToDomainError(err))
		return
	}
	writeJSON(w, http.StatusOK, wire.FromRecord(record))
}

func (h *handler) parse(w http.ResponseWriter, r *http.Request) {
	var req wire.ParseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parsed, err := h.svc.Parse(r.Context(), req.Expression)
	if err != nil {
		writeError(w, r, service.ToDomainError(err))
		return
	}
	writeJSON(w, http.StatusOK, wire.FromParsed(parsed))
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) *apperrors.Error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		reason := "malformed JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			reason = "body exceeds 4096 bytes"
		case errors.Is(err, io.EOF):
			reason = "body is empty"
		}
		return &apperrors.Error{
			Code:     apperrors.CodeRequestInvalid,
			Message:  reason,
			Metadata: map[string]string{"reason": reason},
			Cause:    err,
		}
	}
	return nil
}
