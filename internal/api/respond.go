package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lox/handtracker/internal/auth"
	"github.com/lox/handtracker/internal/cards"
	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/store"
	"github.com/lox/handtracker/internal/tracker"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errBadRequest = errors.New("bad request")

// requestUser names the authenticated caller, or "" without one.
func requestUser(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return id.User
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps tracker, store and validation errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, tracker.ErrRoundIncomplete),
		errors.Is(err, tracker.ErrRoundComplete),
		errors.Is(err, tracker.ErrFinalStreet),
		errors.Is(err, tracker.ErrHandOver):
		status, code = http.StatusConflict, "wrong_street"
	case errors.Is(err, tracker.ErrIllegalAction),
		errors.Is(err, tracker.ErrUnsupportedAction),
		errors.Is(err, tracker.ErrRaiseTooSmall),
		errors.Is(err, tracker.ErrAmount),
		errors.Is(err, tracker.ErrUnknownPlayer):
		status, code = http.StatusUnprocessableEntity, "illegal_action"
	case errors.Is(err, errBadRequest),
		errors.Is(err, tracker.ErrNotEnoughPlayers),
		errors.Is(err, cards.ErrInvalidCard),
		errors.Is(err, cards.ErrDuplicateCard),
		errors.Is(err, cards.ErrCardCount),
		errors.Is(err, game.ErrDuplicatePlayer),
		errors.Is(err, game.ErrDuplicateSeat),
		errors.Is(err, game.ErrMultipleHeroes),
		errors.Is(err, game.ErrNegativeAmount):
		status, code = http.StatusBadRequest, "invalid"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "user", requestUser(r), "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return id, nil
}
