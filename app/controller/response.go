package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Type    apperrors.ErrorType `json:"type"`
	Message string              `json:"message"`
	Detail  string              `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.GetLogger().Errorw("❌ writeJSON: Error encoding response", "error", err)
	}
}

// writeError renders err as {type, message, detail} with its AppError status
func writeError(w http.ResponseWriter, op string, err error) {
	status := apperrors.HTTPStatus(err)
	body := errorResponse{Type: apperrors.ServerError, Message: "Internal server error"}
	if appErr, ok := apperrors.As(err); ok {
		body = errorResponse{Type: appErr.Type, Message: appErr.Message, Detail: appErr.Detail}
	}

	if status >= http.StatusInternalServerError {
		logger.GetLogger().Errorw("❌ "+op+": request failed", "status", status, "error", err)
	} else {
		logger.GetLogger().Warnw("⚠️  "+op+": request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.ValidationFailed("Invalid request body", err.Error())
	}
	return nil
}
