package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/factionboard/internal/model"
)

const maxBodyBytes = 64 << 10

// decodeJSON decodes the request body into dst. Field-level validation
// errors raised while decoding pass through unchanged; anything else is
// reported as a malformed body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, model.ErrValidation) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return NewInvalidRequestError("request body is required")
		}
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
