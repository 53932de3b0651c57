package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/stakes"
	"github.com/lox/handtracker/internal/store"
	"github.com/lox/handtracker/internal/tracker"
)

// SessionRequest creates or updates a session. Stakes use the "1,2" form.
type SessionRequest struct {
	Date     *time.Time `json:"date,omitempty"`
	Location string     `json:"location"`
	Stakes   string     `json:"stakes"`
	GameType string     `json:"game_type"`
	Note     string     `json:"note"`
}

func (req SessionRequest) apply(sess *store.Session) error {
	st, err := stakes.Parse(req.Stakes)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if req.Date != nil {
		sess.Date = req.Date.UTC()
	}
	if st.Big != 0 {
		sess.Stakes = st
	}
	if req.GameType != "" {
		sess.GameType = req.GameType
	}
	sess.Location = req.Location
	sess.Note = req.Note
	return nil
}

// ActionRequest records a single action.
type ActionRequest struct {
	PlayerID int64           `json:"player_id"`
	Type     game.ActionType `json:"type"`
	Amount   int             `json:"amount"`
}

// ActionResponse carries the appended or removed actions and the new state.
type ActionResponse struct {
	Actions []game.Action `json:"actions"`
	State   tracker.State `json:"state"`
}

type holeCardsRequest struct {
	PlayerID  int64  `json:"player_id"`
	HoleCards string `json:"hole_cards"`
}

type boardRequest struct {
	Board string `json:"board"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.tracker.Sessions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := &store.Session{}
	if err := req.apply(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.NewSession(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.tracker.Session(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.tracker.Session(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.apply(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.UpdateSession(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.DeleteSession(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Deleted session", "session", id, "user", requestUser(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessionHands(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.tracker.Session(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeHands(w, r, id)
}

func (s *Server) listHands(w http.ResponseWriter, r *http.Request) {
	var sessionID int64
	if raw := r.URL.Query().Get("session"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid session %q", errBadRequest, raw))
			return
		}
		sessionID = id
	}
	s.writeHands(w, r, sessionID)
}

func (s *Server) writeHands(w http.ResponseWriter, r *http.Request, sessionID int64) {
	hands, err := s.tracker.Hands(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if hands == nil {
		hands = []*game.Hand{}
	}
	writeJSON(w, http.StatusOK, hands)
}

func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sessionID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.tracker.Session(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := s.tracker.RenderSession(r.Context(), id, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeTOML(w, fmt.Sprintf("session-%d.phhs", id), buf.Bytes())
}

func (s *Server) createHand(w http.ResponseWriter, r *http.Request) {
	var req tracker.NewHand
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.tracker.StartHand(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tracker.NewState(h))
}

func (s *Server) getHand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.tracker.Snapshot(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) annotateHand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req tracker.Annotation
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.tracker.Annotate(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.NewState(h))
}

func (s *Server) deleteHand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.DeleteHand(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Deleted hand", "hand", id, "user", requestUser(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recordAction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	appended, err := s.tracker.Record(r.Context(), id, req.PlayerID, req.Type, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeActions(w, r, id, http.StatusCreated, appended)
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.tracker.Undo(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeActions(w, r, id, http.StatusOK, removed)
}

func (s *Server) writeActions(w http.ResponseWriter, r *http.Request, handID int64, status int, actions []game.Action) {
	state, err := s.tracker.Snapshot(r.Context(), handID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if actions == nil {
		actions = []game.Action{}
	}
	writeJSON(w, status, ActionResponse{Actions: actions, State: state})
}

func (s *Server) advanceStreet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.tracker.AdvanceStreet(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.NewState(h))
}

func (s *Server) setHoleCards(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req holeCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.tracker.SetHoleCards(r.Context(), id, req.PlayerID, req.HoleCards)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.NewState(h))
}

func (s *Server) setBoard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req boardRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.tracker.SetBoard(r.Context(), id, req.Board)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.NewState(h))
}

func (s *Server) exportHand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "handID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.tracker.RenderHand(r.Context(), id, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeTOML(w, fmt.Sprintf("hand-%d.phh", id), buf.Bytes())
}

func writeTOML(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/toml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
