package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/factionboard/internal/api/apierr"
	basemw "github.com/mcoot/factionboard/internal/middleware"
)

// Recovery converts handler panics into the INTERNAL_ERROR envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return basemw.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
