package httputil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteHTML writes an HTML fragment that is already trusted for output
func WriteHTML(w http.ResponseWriter, status int, html template.HTML) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(html))
	return err
}

// WriteText writes a plain text response
func WriteText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// WriteError writes a formatted error response
func WriteError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	WriteText(w, status, fmt.Sprintf(format, args...))
}
