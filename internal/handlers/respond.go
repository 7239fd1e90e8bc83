package handlers

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds request bodies; prompts embed the whole knowledge base.
const maxBodyBytes = 4 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Unsupported answers methods a route does not implement.
func Unsupported(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "Unsupported method.")
}

// Preflight answers bare OPTIONS requests that the CORS middleware did not
// treat as a preflight.
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
