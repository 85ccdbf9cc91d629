package responses

import (
	"encoding/json"
	"log"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// EncodeWriteJSON streams payload as the response body.
// Headers are frozen once this is called.
func EncodeWriteJSON(w http.ResponseWriter, HTTPStatusCode int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(HTTPStatusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ERROR][RESPONSE] encoding JSON: %v", err)
	}
}

// WriteSimpleErrorJSON wraps an operator-facing text into an error Message
func WriteSimpleErrorJSON(w http.ResponseWriter, HTTPStatusCode int, msg string) {
	EncodeWriteJSON(w, HTTPStatusCode, Message{Type: TypeError, Message: msg})
}

func WriteOK(w http.ResponseWriter) {
	EncodeWriteJSON(w, http.StatusOK, Message{Type: TypeOK})
}
