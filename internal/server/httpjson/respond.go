package httpjson

import (
	"encoding/json"
	"net/http"
)

// Respond writes v as a JSON response with the given status. A nil v writes
// only the status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes the uniform error envelope {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, map[string]string{"error": msg})
}

// Decode reads the request body into v. It rejects unknown fields so typos in
// client payloads fail loudly instead of being silently dropped.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
