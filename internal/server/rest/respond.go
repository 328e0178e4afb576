package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusMap is checked in order; the first sentinel matched wins.
var statusMap = []struct {
	err    error
	status int
}{
	{common.ErrorValidation, http.StatusBadRequest},
	{common.ErrorDuplicateEmail, http.StatusBadRequest},
	{common.ErrorInvalidCredentials, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrorForbidden, http.StatusForbidden},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorConflict, http.StatusConflict},
}

// writeServiceError maps err to a status and a client-safe message.
// Unrecognised errors are logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn(r.Context(), "request timed out", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}
	for _, m := range statusMap {
		if errors.Is(err, m.err) {
			writeError(w, m.status, publicMessage(err, m.err))
			return
		}
	}
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
}

// publicMessage strips the sentinel prefix from "sentinel: detail" so the
// client sees only the detail.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && detail != "" {
		return detail
	}
	return msg
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return common.ErrorValidation
	}
	return nil
}
