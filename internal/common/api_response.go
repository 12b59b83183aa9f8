package common

import (
	"net/http"

	"github.com/goccy/go-json"
	"wohee/vodtracker/internal/logging"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes body as JSON with the given status.
func RespondJSON(w http.ResponseWriter, code int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// RespondSuccess writes a 200 JSON response.
func RespondSuccess(w http.ResponseWriter, body any) {
	RespondJSON(w, http.StatusOK, body)
}

// RespondError converts err into the {error, details} body. Upstream causes
// are logged here and stripped from the response.
func RespondError(w http.ResponseWriter, err error, fallback string) {
	appErr := AsAppError(err, fallback)
	code := StatusFor(appErr)

	body := ErrorBody{Error: appErr.Message}
	if appErr.Kind == KindUpstream {
		logging.Error("request failed upstream",
			"message", appErr.Message,
			"error", errString(appErr.Err),
		)
	} else {
		body.Details = appErr.Details
	}

	RespondJSON(w, code, body)
}

// RespondPermissionDenied writes a 403 for a missing capability.
func RespondPermissionDenied(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusForbidden, ErrorBody{Error: message})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
