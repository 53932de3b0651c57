package tracker

import (
	"context"
	"fmt"

	"github.com/lox/handtracker/internal/store"
)

// NewSession saves a new session, filling a zero date from the clock and
// empty stakes or game type from the defaults.
func (t *Tracker) NewSession(ctx context.Context, s *store.Session) error {
	if s.ID != 0 {
		return fmt.Errorf("session already has id %d", s.ID)
	}
	if s.Date.IsZero() {
		s.Date = t.clock.Now().UTC()
	}
	if s.Stakes.Big == 0 {
		s.Stakes = t.defaults.Stakes
	}
	if s.GameType == "" {
		s.GameType = t.defaults.GameType
	}
	if s.SyncID == "" {
		id, err := t.ids.Generate()
		if err != nil {
			return err
		}
		s.SyncID = id
	}

	if err := t.store.SaveSession(ctx, s); err != nil {
		return err
	}
	t.logger.Info("Started session", "session", s.ID, "stakes", s.Stakes, "location", s.Location)
	return nil
}

// UpdateSession saves changes to an existing session.
func (t *Tracker) UpdateSession(ctx context.Context, s *store.Session) error {
	if s.ID == 0 {
		return fmt.Errorf("session has no id")
	}
	return t.store.SaveSession(ctx, s)
}

func (t *Tracker) Session(ctx context.Context, id int64) (*store.Session, error) {
	return t.store.GetSession(ctx, id)
}

func (t *Tracker) Sessions(ctx context.Context) ([]*store.Session, error) {
	return t.store.ListSessions(ctx)
}

// DeleteSession removes a session. Its hands stay, unlinked.
func (t *Tracker) DeleteSession(ctx context.Context, id int64) error {
	if err := t.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	t.logger.Info("Deleted session", "session", id)
	return nil
}
