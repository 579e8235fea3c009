package gateway

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response body: {status, response} on success and
// provider failure, {status, message} on validation/precondition failure.
type envelope struct {
	Status   bool `json:"status"`
	Response any  `json:"response,omitempty"`
	Message  any  `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// respondOK returns the provider's response verbatim.
func respondOK(w http.ResponseWriter, response any) {
	writeJSON(w, http.StatusOK, envelope{Status: true, Response: response})
}

// respondProviderError surfaces a provider failure as-is; these are never
// wrapped or retried.
func respondProviderError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, envelope{Status: false, Response: err.Error()})
}

// respondPrecondition reports a failed business precondition (unregistered
// recipient, unknown group) with a plain message.
func respondPrecondition(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: false, Message: message})
}

// fieldErrors maps request fields to validation messages.
type fieldErrors map[string]string

func respondValidation(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: false, Message: errs})
}

// requireFields collects an "Invalid value" entry for every empty field.
// Returns nil when all fields are present.
func requireFields(fields map[string]string) fieldErrors {
	var errs fieldErrors
	for name, value := range fields {
		if value == "" {
			if errs == nil {
				errs = make(fieldErrors)
			}
			errs[name] = "Invalid value"
		}
	}
	return errs
}
