package main

import (
	"context"
	"fmt"

	"github.com/lox/handtracker/cmd/handtracker/shared"
	"github.com/lox/handtracker/internal/tui"
)

// EnterCmd opens the full-screen entry view for a hand.
type EnterCmd struct {
	ID int64 `arg:"" help:"Hand ID (see hand new)"`
}

func (c *EnterCmd) Run(g *Globals) error {
	a, err := g.open(context.Background(), openOptions{quiet: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := shared.SetupSignalHandler(a.logger)
	if _, err := a.tracker.Hand(ctx, c.ID); err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	return tui.Run(ctx, a.tracker, c.ID, a.logger)
}
