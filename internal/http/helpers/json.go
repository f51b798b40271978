package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
)

const maxBodyBytes = 1 << 20

// ReadJSON decodifica el body (máx 1MB). Devuelve false si ya escribió el error.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrUnsupportedMediaType)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithCause(err))
		return false
	}
	return true
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoStore marca respuestas con credenciales.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
