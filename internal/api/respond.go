package api

import (
	"encoding/json"
	"errors"
	"net/http"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

type errorResponse struct {
	Code  werrors.Code `json:"code"`
	Error string       `json:"error"`
}

// statusFor maps a structured error code to an HTTP status.
func statusFor(code werrors.Code) int {
	switch code {
	case werrors.ErrCodeInvalidInput,
		werrors.ErrCodeInvalidJSON,
		werrors.ErrCodeInvalidOption,
		werrors.ErrCodeInvalidRandom,
		werrors.ErrCodeInvalidReference,
		werrors.ErrCodeUnknownBuilder,
		werrors.ErrCodeContextMismatch,
		werrors.ErrCodeTypeMismatch,
		werrors.ErrCodeStyle:
		return http.StatusBadRequest
	case werrors.ErrCodeNotFound:
		return http.StatusNotFound
	case werrors.ErrCodeMissingReference,
		werrors.ErrCodeCyclicTree,
		werrors.ErrCodeEmptyDistribution:
		return http.StatusUnprocessableEntity
	case werrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := werrors.GetCode(err)
	if code == "" {
		code = werrors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := werrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode request body: %v", err)
	}
	return nil
}
