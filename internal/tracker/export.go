package tracker

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handtracker/internal/fileutil"
	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/phh"
)

// RenderHand writes a single hand as a PHH document.
func (t *Tracker) RenderHand(ctx context.Context, handID int64, w io.Writer) error {
	h, err := t.store.GetHand(ctx, handID)
	if err != nil {
		return err
	}
	hist, err := phh.FromHand(h, t.phhOptions(ctx, h.SessionID))
	if err != nil {
		return err
	}
	return phh.Encode(w, hist)
}

// ExportHand writes a single hand to path as a .phh file.
func (t *Tracker) ExportHand(ctx context.Context, handID int64, path string) error {
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return t.RenderHand(ctx, handID, w)
	}); err != nil {
		return err
	}
	t.logger.Info("Exported hand", "hand", handID, "path", path)
	return nil
}

// RenderSession writes every hand of a session as one .phhs document with a
// [hand_N] section per hand, oldest first. Hands are rendered concurrently
// and written in order. It returns the number of hands written.
func (t *Tracker) RenderSession(ctx context.Context, sessionID int64, w io.Writer) (int, error) {
	hands, err := t.store.ListHands(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	opts := t.phhOptions(ctx, sessionID)

	sections := make([][]byte, len(hands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, h := range hands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := renderSection(i+1, h, opts)
			if err != nil {
				return err
			}
			sections[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for _, b := range sections {
		if _, err := w.Write(b); err != nil {
			return 0, err
		}
	}
	return len(hands), nil
}

// ExportSession writes a session to path as a .phhs file.
func (t *Tracker) ExportSession(ctx context.Context, sessionID int64, path string) (int, error) {
	var n int
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var err error
		n, err = t.RenderSession(ctx, sessionID, w)
		return err
	})
	if err != nil {
		return 0, err
	}
	t.logger.Info("Exported session", "session", sessionID, "hands", n, "path", path)
	return n, nil
}

func renderSection(n int, h *game.Hand, opts phh.Options) ([]byte, error) {
	hist, err := phh.FromHand(h, opts)
	if err != nil {
		return nil, fmt.Errorf("hand %d: %w", h.ID, err)
	}
	return phh.EncodeSection(n, hist)
}

// phhOptions names the table after the session's location when there is one.
func (t *Tracker) phhOptions(ctx context.Context, sessionID int64) phh.Options {
	opts := phh.Options{SeatCount: t.defaults.Seats}
	if sessionID == 0 {
		return opts
	}
	sess, err := t.store.GetSession(ctx, sessionID)
	if err != nil {
		t.logger.Debug("No session for export", "session", sessionID, "error", err)
		return opts
	}
	opts.Table = sess.Location
	return opts
}
