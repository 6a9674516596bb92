// Package respond writes JSON responses and turns errors into them.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("encode response", slog.Any("error", err))
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes err as {"error", "code", "details"}. Anything that is not an
// *apperr.AppError is treated as internal. Server errors are logged with their
// cause; the cause never reaches the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	if ae == nil {
		ae = apperr.Internal(err)
	}
	if ae.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.Logger(r.Context()).Error("request failed",
			slog.String("code", ae.Code),
			slog.Any("error", err),
		)
	}
	JSON(w, ae.HTTPStatus, ae)
}
