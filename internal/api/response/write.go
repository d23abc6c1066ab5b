package response

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// JSON encodes data and writes it with the given status. Encoding happens
// before any header is sent, so a value that cannot be encoded becomes a
// plain 500 rather than a truncated body. Responses are marked no-store
// since creation responses carry owner secrets.
func JSON(w http.ResponseWriter, status int, data any) {
	var body bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&body).Encode(data); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
