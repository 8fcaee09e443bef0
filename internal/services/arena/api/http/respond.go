package http

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/platform/errors/i18n"
)

// errorEnvelope is the wire form of every failed request.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("http: encode response: %v", err)
	}
}

// writeError renders a domain error as a localized JSON envelope. The
// message language follows the request's Accept-Language header; the
// code is stable and machine-readable regardless of locale.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()

	locale := i18n.ResolveLocale(r.Header.Get("Accept-Language"))
	message := i18n.GetCatalog(locale).Format(string(code), apperrors.MetadataOf(err))

	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"code":   code,
			"status": status,
			"path":   r.URL.Path,
		}).Errorf("http: request failed: %v", err)
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    string(code),
		Message: message,
	}})
}

// decodeJSON reads one JSON body into v, translating failures into a
// request validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestInvalid, "decode request body", err)
	}
	return nil
}
