package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	"github.com/louisbranch/dicetower/internal/platform/errors/i18n"
)

// ErrorDetail is one field-level problem in an error body.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Locale  string        `json:"locale"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// requestLocale prefers ?lang= over Accept-Language.
func requestLocale(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return r.Header.Get("Accept-Language")
}

func newErrorBody(locale string, err *apperrors.Error) ErrorBody {
	catalog := i18n.GetCatalog(locale)
	body := ErrorBody{
		Code:    string(err.Code),
		Message: catalog.Format(string(err.Code), err.Metadata),
		Locale:  catalog.Locale(),
	}
	for _, violation := range err.Violations {
		body.Details = append(body.Details, ErrorDetail{Field: violation.Field, Message: violation.Description})
	}
	return body
}

func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.Error) {
	writeJSON(w, err.Code.HTTPStatus(), errorEnvelope{Error: newErrorBody(requestLocale(r), err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json response: %v", err)
	}
}
