package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/identity"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps domain sentinels to status codes with a short message;
// anything unrecognized is a 500 with no internals exposed.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, identity.ErrDuplicateEmail),
		errors.Is(err, identity.ErrInvalidOrExpiredOTP),
		errors.Is(err, exam.ErrQuestionsNotFound),
		errors.Is(err, exam.ErrAlreadySubmitted),
		errors.Is(err, exam.ErrTestNotStarted),
		errors.Is(err, exam.ErrWindowExpired),
		errors.Is(err, exam.ErrInvalidQuestion),
		errors.Is(err, exam.ErrInvalidTest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, identity.ErrNotVerified):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, exam.ErrTestNotFound),
		errors.Is(err, identity.ErrStudentNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
