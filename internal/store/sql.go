package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/stakes"
	"github.com/lox/handtracker/internal/syncid"
)

// sqlStore implements Store over database/sql. Queries are written with "?"
// placeholders and rewritten for drivers that number them.
type sqlStore struct {
	db       *sql.DB
	logger   *log.Logger
	numbered bool
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// q rewrites "?" placeholders to "$1", "$2", ... when the driver needs it.
func (s *sqlStore) q(query string) string {
	if !s.numbered {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// applySchema runs each statement of an embedded schema file in turn.
func applySchema(ctx context.Context, db *sql.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

// Sessions

func (s *sqlStore) SaveSession(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	if sess.SyncID == "" {
		sess.SyncID = syncid.New()
	} else if err := syncid.Validate(sess.SyncID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	args := []any{sess.SyncID, sess.Date.UnixMilli(), sess.Location, stakes.Format(sess.Stakes), sess.GameType, sess.Note}

	if sess.ID == 0 {
		err := s.db.QueryRowContext(ctx, s.q(`
INSERT INTO sessions (sync_id, date_ms, location, stakes, game_type, note)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`), args...).Scan(&sess.ID)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		s.logger.Debug("Inserted session", "id", sess.ID, "sync_id", sess.SyncID)
		return nil
	}

	res, err := s.db.ExecContext(ctx, s.q(`
UPDATE sessions
   SET sync_id = ?, date_ms = ?, location = ?, stakes = ?, game_type = ?, note = ?
 WHERE id = ?`), append(args, sess.ID)...)
	if err != nil {
		return fmt.Errorf("update session %d: %w", sess.ID, err)
	}
	return requireRow(res, "session", sess.ID)
}

const sessionColumns = `id, sync_id, date_ms, location, stakes, game_type, note`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var (
		sess    Session
		dateMs  int64
		stakeTx string
	)
	if err := row.Scan(&sess.ID, &sess.SyncID, &dateMs, &sess.Location, &stakeTx, &sess.GameType, &sess.Note); err != nil {
		return nil, err
	}
	st, err := stakes.Parse(stakeTx)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", sess.ID, err)
	}
	sess.Stakes = st
	sess.Date = time.UnixMilli(dateMs).UTC()
	return &sess, nil
}

func (s *sqlStore) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

func (s *sqlStore) ListSessions(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY date_ms DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []*Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *sqlStore) DeleteSession(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE hands SET session_id = NULL WHERE session_id = ?`), id); err != nil {
			return fmt.Errorf("unlink hands of session %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete session %d: %w", id, err)
		}
		return requireRow(res, "session", id)
	})
}

// Hands

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func (s *sqlStore) SaveHand(ctx context.Context, h *game.Hand) error {
	if h == nil {
		return errors.New("save hand: nil hand")
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("save hand: %w", err)
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}

	var straddleAmount, straddleSeat any
	if h.Straddle != nil {
		straddleAmount, straddleSeat = h.Straddle.Amount, h.Straddle.Seat
	}
	args := []any{
		nullableID(h.SessionID), h.Timestamp.UnixMilli(), h.GameType, stakes.Format(h.Stakes),
		h.Street.String(), straddleAmount, straddleSeat, h.Button, h.SmallBlind, h.BigBlind,
		h.Order.String(), h.Note, h.Board, h.ProfitLoss,
	}

	// IDs are only written back once the transaction commits.
	handID := h.ID
	playerIDs := make([]int64, len(h.Players))
	for i, p := range h.Players {
		playerIDs[i] = p.ID
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if handID == 0 {
			err := tx.QueryRowContext(ctx, s.q(`
INSERT INTO hands (session_id, timestamp_ms, game_type, stakes, street, straddle_amount, straddle_seat,
                   button, small_blind, big_blind, order_policy, note, board, profit_loss)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`), args...).Scan(&handID)
			if err != nil {
				return fmt.Errorf("insert hand: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx, s.q(`
UPDATE hands
   SET session_id = ?, timestamp_ms = ?, game_type = ?, stakes = ?, street = ?, straddle_amount = ?,
       straddle_seat = ?, button = ?, small_blind = ?, big_blind = ?, order_policy = ?, note = ?,
       board = ?, profit_loss = ?
 WHERE id = ?`), append(args, handID)...)
			if err != nil {
				return fmt.Errorf("update hand %d: %w", handID, err)
			}
			if err := requireRow(res, "hand", handID); err != nil {
				return err
			}
		}

		// The log is rewritten whole; players are upserted in place so
		// their IDs stay stable across saves.
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM actions WHERE hand_id = ?`), handID); err != nil {
			return fmt.Errorf("clear actions of hand %d: %w", handID, err)
		}
		if err := s.savePlayers(ctx, tx, handID, h.Players, playerIDs); err != nil {
			return err
		}
		for _, a := range h.Log.Actions() {
			_, err := tx.ExecContext(ctx, s.q(`
INSERT INTO actions (hand_id, sequence, player_id, type, amount, street, auto_filled)
VALUES (?, ?, ?, ?, ?, ?, ?)`),
				handID, a.Sequence, a.PlayerID, a.Type.String(), a.Amount, a.Street.String(), a.AutoFilled)
			if err != nil {
				return fmt.Errorf("insert action %d of hand %d: %w", a.Sequence, handID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.ID = handID
	for i := range h.Players {
		h.Players[i].ID = playerIDs[i]
	}
	s.logger.Debug("Saved hand", "id", h.ID, "players", len(h.Players), "actions", h.Log.Len())
	return nil
}

// savePlayers upserts the hand's players, filling ids for new ones, and
// drops stored players no longer in the list.
func (s *sqlStore) savePlayers(ctx context.Context, tx *sql.Tx, handID int64, players []game.Player, ids []int64) error {
	keep := make([]any, 0, len(players)+1)
	keep = append(keep, handID)

	for i, p := range players {
		if ids[i] == 0 {
			err := tx.QueryRowContext(ctx, s.q(`
INSERT INTO players (hand_id, name, seat, initial_stack, hero, hole_cards, kind)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`), handID, p.Name, p.Seat, p.InitialStack, p.Hero, p.HoleCards, p.Kind.String()).Scan(&ids[i])
			if err != nil {
				return fmt.Errorf("insert player %s: %w", p.Label(), err)
			}
		} else {
			res, err := tx.ExecContext(ctx, s.q(`
UPDATE players
   SET name = ?, seat = ?, initial_stack = ?, hero = ?, hole_cards = ?, kind = ?
 WHERE id = ? AND hand_id = ?`), p.Name, p.Seat, p.InitialStack, p.Hero, p.HoleCards, p.Kind.String(), ids[i], handID)
			if err != nil {
				return fmt.Errorf("update player %d: %w", ids[i], err)
			}
			if err := requireRow(res, "player", ids[i]); err != nil {
				return err
			}
		}
		keep = append(keep, ids[i])
	}

	query := `DELETE FROM players WHERE hand_id = ?`
	if len(keep) > 1 {
		query += ` AND id NOT IN (?` + strings.Repeat(", ?", len(keep)-2) + `)`
	}
	if _, err := tx.ExecContext(ctx, s.q(query), keep...); err != nil {
		return fmt.Errorf("prune players of hand %d: %w", handID, err)
	}
	return nil
}

const handColumns = `id, session_id, timestamp_ms, game_type, stakes, street, straddle_amount, straddle_seat,
       button, small_blind, big_blind, order_policy, note, board, profit_loss`

func scanHand(row interface{ Scan(...any) error }) (*game.Hand, error) {
	var (
		h              game.Hand
		sessionID      sql.NullInt64
		timestampMs    int64
		stakeTx        string
		street         string
		straddleAmount sql.NullInt64
		straddleSeat   sql.NullInt64
		order          string
	)
	err := row.Scan(&h.ID, &sessionID, &timestampMs, &h.GameType, &stakeTx, &street, &straddleAmount, &straddleSeat,
		&h.Button, &h.SmallBlind, &h.BigBlind, &order, &h.Note, &h.Board, &h.ProfitLoss)
	if err != nil {
		return nil, err
	}

	h.SessionID = sessionID.Int64
	h.Timestamp = time.UnixMilli(timestampMs).UTC()
	if h.Stakes, err = stakes.Parse(stakeTx); err != nil {
		return nil, fmt.Errorf("hand %d: %w", h.ID, err)
	}
	if h.Street, err = game.ParseStreet(street); err != nil {
		return nil, fmt.Errorf("hand %d: %w", h.ID, err)
	}
	if h.Order, err = game.ParseOrderPolicy(order); err != nil {
		return nil, fmt.Errorf("hand %d: %w", h.ID, err)
	}
	if straddleAmount.Valid {
		h.Straddle = &game.StraddleConfig{Amount: int(straddleAmount.Int64), Seat: int(straddleSeat.Int64)}
	}
	return &h, nil
}

func (s *sqlStore) GetHand(ctx context.Context, id int64) (*game.Hand, error) {
	return s.loadHand(ctx, s.db, id)
}

func (s *sqlStore) loadHand(ctx context.Context, db querier, id int64) (*game.Hand, error) {
	h, err := scanHand(db.QueryRowContext(ctx, s.q(`SELECT `+handColumns+` FROM hands WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hand %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get hand %d: %w", id, err)
	}

	if h.Players, err = s.loadPlayers(ctx, db, id); err != nil {
		return nil, err
	}
	actions, err := s.loadActions(ctx, db, id)
	if err != nil {
		return nil, err
	}
	actionLog, err := game.NewActionLog(actions...)
	if err != nil {
		return nil, fmt.Errorf("hand %d: %w", id, err)
	}
	h.Log = *actionLog
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("hand %d: %w", id, err)
	}
	return h, nil
}

func (s *sqlStore) loadPlayers(ctx context.Context, db querier, handID int64) ([]game.Player, error) {
	rows, err := db.QueryContext(ctx, s.q(`
SELECT id, name, seat, initial_stack, hero, hole_cards, kind
  FROM players WHERE hand_id = ? ORDER BY seat`), handID)
	if err != nil {
		return nil, fmt.Errorf("players of hand %d: %w", handID, err)
	}
	defer rows.Close()

	var out []game.Player
	for rows.Next() {
		var (
			p    game.Player
			kind string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Seat, &p.InitialStack, &p.Hero, &p.HoleCards, &kind); err != nil {
			return nil, fmt.Errorf("players of hand %d: %w", handID, err)
		}
		if p.Kind, err = game.ParsePlayerKind(kind); err != nil {
			return nil, fmt.Errorf("player %d: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqlStore) loadActions(ctx context.Context, db querier, handID int64) ([]game.Action, error) {
	rows, err := db.QueryContext(ctx, s.q(`
SELECT sequence, player_id, type, amount, street, auto_filled
  FROM actions WHERE hand_id = ? ORDER BY sequence`), handID)
	if err != nil {
		return nil, fmt.Errorf("actions of hand %d: %w", handID, err)
	}
	defer rows.Close()

	var out []game.Action
	for rows.Next() {
		var (
			a      game.Action
			typ    string
			street string
		)
		if err := rows.Scan(&a.Sequence, &a.PlayerID, &typ, &a.Amount, &street, &a.AutoFilled); err != nil {
			return nil, fmt.Errorf("actions of hand %d: %w", handID, err)
		}
		if a.Type, err = game.ParseActionType(typ); err != nil {
			return nil, fmt.Errorf("action %d of hand %d: %w", a.Sequence, handID, err)
		}
		if a.Street, err = game.ParseStreet(street); err != nil {
			return nil, fmt.Errorf("action %d of hand %d: %w", a.Sequence, handID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqlStore) ListHands(ctx context.Context, sessionID int64) ([]*game.Hand, error) {
	query := `SELECT id FROM hands ORDER BY timestamp_ms, id`
	var args []any
	if sessionID != 0 {
		query = `SELECT id FROM hands WHERE session_id = ? ORDER BY timestamp_ms, id`
		args = append(args, sessionID)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list hands: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list hands: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hands: %w", err)
	}

	// Hydrate after closing the cursor: SQLite runs on a single connection.
	out := make([]*game.Hand, 0, len(ids))
	for _, id := range ids {
		h, err := s.loadHand(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *sqlStore) DeleteHand(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM hands WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete hand %d: %w", id, err)
	}
	return requireRow(res, "hand", id)
}
