package responses

import (
	"log"
	"net/http"
)

// WriteHTMLBytes writes a fully rendered page. Render before calling so a template
// error can still become a 500.
func WriteHTMLBytes(w http.ResponseWriter, HTTPStatusCode int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(HTTPStatusCode) // Response Header Sent & Frozen
	if _, err := w.Write(page); err != nil {
		log.Printf("[ERROR] writing HTML to response: %v", err)
	}
}
