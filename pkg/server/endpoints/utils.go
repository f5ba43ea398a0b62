package endpoints

import (
	"encoding/json"
	"net/http"
)

// respondWithError wraps the payload in the {"error": ...} envelope every
// endpoint uses for failures.
func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

// respondWithJSON writes the payload as a JSON response body. Payloads are
// built from in-process values, so a marshal failure is not reachable.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
