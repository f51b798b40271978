package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError serializa err como envelope JSON con su status.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	resp := errorResponse{Code: appErr.Code, Message: appErr.Message, Detail: appErr.Detail}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteUnauthorized responde el 401 uniforme con el challenge Bearer.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="warden"`)
	WriteError(w, ErrUnauthorized)
}
