package server

import (
	"encoding/json"
	"net/http"

	"sqlchat/internal/errs"
)

// errorResponse is the uniform failure envelope. Every response, success or
// failure, carries an explicit success flag so clients never have to infer
// the outcome from the HTTP status alone.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// messageResponse is the uniform envelope for mutations that have nothing
// to return beyond confirmation.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures at this
// point are unrecoverable mid-response; they are logged and abandoned.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.With().Err(err).Logger().Error("failed to encode response")
	}
}

// writeError maps the error's kind to an HTTP status and writes the
// failure envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), errorResponse{Success: false, Error: err.Error()})
}

// statusFor translates the internal error taxonomy into HTTP status codes.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindInvalidInput, errs.ErrKindProtectedDefault, errs.ErrKindQueryFailed:
		return http.StatusBadRequest
	case errs.ErrKindNotFound, errs.ErrKindConfigNotFound:
		return http.StatusNotFound
	case errs.ErrKindDuplicateName, errs.ErrKindAlreadyPopulated:
		return http.StatusConflict
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed, errs.ErrKindOracleFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// typos surface as errors instead of silently-ignored options.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
	}
	return nil
}
