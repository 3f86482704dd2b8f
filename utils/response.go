package utils

import (
	"encoding/json"
	"net/http"

	"recipebox/errs"
	"recipebox/logging"

	"go.uber.org/zap"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithAppError maps a domain error to its HTTP response. Causes of 5xx
// responses are logged and never returned to the client.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := errs.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logging.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	RespondWithJSON(w, httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn("encode response", zap.Error(err))
	}
}
