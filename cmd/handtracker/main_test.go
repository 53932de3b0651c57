package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handtracker/internal/auth"
	"github.com/lox/handtracker/internal/config"
	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/tracker"
)

type testCLI struct {
	t   *testing.T
	dir string
}

func newTestCLI(t *testing.T) *testCLI {
	return &testCLI{t: t, dir: t.TempDir()}
}

func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("handtracker"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { c.t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(c.t, err)

	base := []string{
		"--config", filepath.Join(c.dir, "handtracker.hcl"),
		"--database", filepath.Join(c.dir, "hands.db"),
		"--log-level", "error",
		"--no-color",
	}
	ctx, err := parser.Parse(append(base, args...))
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	cli.Globals.out = &out
	err = ctx.Run(&cli.Globals)
	return out.String(), err
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "handtracker %v", args)
	return out
}

func TestHandLifecycle(t *testing.T) {
	cli := newTestCLI(t)

	out := cli.mustRun("session", "new", "--location", "Bellagio", "--stakes", "1,2")
	assert.Equal(t, "Session 1 started (NLHE 1/2)\n", out)

	out = cli.mustRun("hand", "new", "--session", "1",
		"-p", "0:Hero", "-p", "1:Alice", "-p", "2:Bob:150",
		"--hero", "0", "--hero-cards", "ahkh",
		"--button", "2", "--sb", "0", "--bb", "1")
	assert.Contains(t, out, "Hand 1 started")
	assert.Contains(t, out, "Hero to act")
	assert.Contains(t, out, "[Ah Kh]")

	assert.Equal(t, "Hero raises to $6\n", cli.mustRun("hand", "act", "1", "raise", "6"))
	assert.Equal(t, "Alice folds (auto)\nBob calls $6\n", cli.mustRun("hand", "act", "1", "call", "--seat", "2"))
	assert.Equal(t, "*** FLOP *** ($12)\n", cli.mustRun("hand", "next", "1"))
	assert.Equal(t, "Board: [Qh Jh 2c]\n", cli.mustRun("hand", "board", "1", "QhJh2c"))

	assert.Equal(t, "Hero checks\n", cli.mustRun("hand", "act", "1", "x"))
	assert.Equal(t, "Undo: Hero checks\n", cli.mustRun("hand", "undo", "1"))

	assert.Equal(t, "Bob: [7c 7d]\n", cli.mustRun("hand", "cards", "1", "2", "7c7d"))
	cli.mustRun("hand", "note", "1", "--note", "set over set", "--profit-loss=-150")

	var state tracker.State
	require.NoError(t, json.Unmarshal([]byte(cli.mustRun("hand", "show", "1", "--json")), &state))
	assert.Equal(t, game.Flop, state.Hand.Street)
	assert.Equal(t, 12, state.Pot)
	assert.Equal(t, "Hero", state.NextToAct.Name)
	assert.Equal(t, "set over set", state.Hand.Note)
	assert.Equal(t, -150, state.Hand.ProfitLoss)
	assert.Equal(t, 150, state.Hand.PlayerAtSeat(2).InitialStack)

	out = cli.mustRun("session", "show", "1")
	assert.Contains(t, out, "Bellagio")
	assert.Contains(t, out, "flop")

	phh := cli.mustRun("hand", "export", "1", "-o", "-")
	assert.Contains(t, phh, "p1 cbr 6")

	path := filepath.Join(cli.dir, "out", "session.phhs")
	out = cli.mustRun("session", "export", "1", "-o", path)
	assert.Equal(t, "Exported 1 hands to "+path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "p2 f")

	assert.Equal(t, "Hand 1 deleted\n", cli.mustRun("hand", "delete", "1"))
	assert.Equal(t, "No hands\n", cli.mustRun("hand", "list"))
}

func TestHandCommandErrors(t *testing.T) {
	cli := newTestCLI(t)
	cli.mustRun("hand", "new", "-p", "0:Hero", "-p", "1:Villain", "--button", "0", "--sb", "0", "--bb", "1")

	_, err := cli.run("hand", "act", "1", "shove")
	assert.ErrorContains(t, err, "unknown action")

	_, err = cli.run("hand", "act", "1", "fold", "--seat", "7")
	assert.ErrorContains(t, err, "nobody in seat 7")

	_, err = cli.run("hand", "next", "1")
	assert.ErrorIs(t, err, tracker.ErrRoundIncomplete)

	_, err = cli.run("hand", "show", "99")
	assert.ErrorContains(t, err, "hand 99")

	_, err = cli.run("hand", "note", "1")
	assert.ErrorContains(t, err, "nothing to change")

	_, err = cli.run("hand", "new", "-p", "0:Solo", "--button", "0", "--sb", "0", "--bb", "0")
	assert.ErrorIs(t, err, tracker.ErrNotEnoughPlayers)
}

func TestParsePlayer(t *testing.T) {
	tests := []struct {
		arg  string
		want game.Player
		err  bool
	}{
		{arg: "0:Hero", want: game.Player{Seat: 0, Name: "Hero"}},
		{arg: "3: Alice :$250", want: game.Player{Seat: 3, Name: "Alice", InitialStack: 250}},
		{arg: "Hero", err: true},
		{arg: "x:Hero", err: true},
		{arg: "1:Bob:lots", err: true},
		{arg: "1:Bob:100:extra", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePlayer(tt.arg)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStraddle(t *testing.T) {
	s, err := parseStraddle("3:$4")
	require.NoError(t, err)
	assert.Equal(t, &game.StraddleConfig{Seat: 3, Amount: 4}, s)

	_, err = parseStraddle("3")
	assert.Error(t, err)
	_, err = parseStraddle("3:0")
	assert.Error(t, err)
}

func TestHandNewRequest(t *testing.T) {
	hero := 1
	cmd := HandNewCmd{
		Players:   []string{"0:Alice", "1:Hero"},
		Hero:      &hero,
		HeroCards: "AsKd",
		Button:    0,
		BigBlind:  1,
		Stakes:    "2,5",
		Order:     "positional",
	}
	req, err := cmd.request()
	require.NoError(t, err)
	assert.True(t, req.Players[1].Hero)
	assert.Equal(t, "AsKd", req.Players[1].HoleCards)
	assert.Equal(t, game.Stakes{Small: 2, Big: 5}, req.Stakes)
	require.NotNil(t, req.Order)
	assert.Equal(t, game.PositionalOrder, *req.Order)

	missing := 4
	cmd.Hero = &missing
	_, err = cmd.request()
	assert.ErrorContains(t, err, "hero seat 4")
}

func TestServeValidator(t *testing.T) {
	assert.IsType(t, auth.NoopValidator{}, validator(config.HTTPConfig{}))
	assert.IsType(t, &auth.TokenValidator{}, validator(config.HTTPConfig{Token: "t"}))
	assert.IsType(t, &auth.HTTPValidator{}, validator(config.HTTPConfig{AuthURL: "http://auth.local/check"}))
}
