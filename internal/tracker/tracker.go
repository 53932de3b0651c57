// Package tracker is the hand-entry service. It owns single-writer access to
// stored hands: every mutation loads the hand, applies engine operations,
// saves it, and publishes events while holding that hand's lock.
package tracker

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/store"
	"github.com/lox/handtracker/internal/syncid"
)

var (
	ErrIllegalAction     = errors.New("illegal action")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrRoundComplete     = errors.New("betting round is complete")
	ErrRoundIncomplete   = errors.New("betting round is not complete")
	ErrFinalStreet       = errors.New("already on the river")
	ErrHandOver          = errors.New("hand is over")
	ErrRaiseTooSmall     = errors.New("raise below minimum")
	ErrAmount            = errors.New("invalid amount")
	ErrNotEnoughPlayers  = errors.New("a hand needs at least two players")
)

// Defaults fill in whatever a new hand or session leaves empty.
type Defaults struct {
	Stakes        game.Stakes
	GameType      string
	Order         game.OrderPolicy
	StartingStack int
	Seats         int
}

// Tracker records hands against a store.
type Tracker struct {
	store    store.Store
	logger   *log.Logger
	clock    quartz.Clock
	bus      EventBus
	ids      *syncid.Generator
	defaults Defaults
	workers  int

	mu    sync.Mutex
	locks map[int64]*handLock
}

type handLock struct {
	sync.Mutex
	refs int
}

// Option configures a Tracker.
type Option func(*Tracker)

func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock sets the clock used for hand timestamps, session dates and event
// times.
func WithClock(clock quartz.Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

func WithEventBus(bus EventBus) Option {
	return func(t *Tracker) { t.bus = bus }
}

func WithDefaults(d Defaults) Option {
	return func(t *Tracker) { t.defaults = d }
}

// WithExportWorkers bounds how many hands a session export renders at once.
func WithExportWorkers(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New creates a tracker backed by s.
func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   s,
		logger:  log.Default(),
		clock:   quartz.NewReal(),
		bus:     NewEventBus(),
		workers: 4,
		defaults: Defaults{
			Stakes:        game.Stakes{Small: 1, Big: 2},
			GameType:      "NLHE",
			StartingStack: 200,
			Seats:         9,
		},
		locks: make(map[int64]*handLock),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithPrefix("tracker")
	t.ids = syncid.NewGenerator(t.clock, rand.Reader)
	return t
}

// Events returns the bus events are published on.
func (t *Tracker) Events() EventBus {
	return t.bus
}

// Defaults returns the values applied to new hands and sessions.
func (t *Tracker) Defaults() Defaults {
	return t.defaults
}

// lock serialises writers of one hand. The entry is dropped once its last
// holder or waiter unlocks.
func (t *Tracker) lock(handID int64) func() {
	t.mu.Lock()
	l, ok := t.locks[handID]
	if !ok {
		l = &handLock{}
		t.locks[handID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, handID)
		}
		t.mu.Unlock()
	}
}

// mutate runs fn against the stored hand under its lock, saves the result,
// and publishes the events fn returns. Nothing is saved or published when fn
// fails.
func (t *Tracker) mutate(ctx context.Context, handID int64, fn func(h *game.Hand) ([]Event, error)) (*game.Hand, error) {
	unlock := t.lock(handID)
	defer unlock()

	h, err := t.store.GetHand(ctx, handID)
	if err != nil {
		return nil, err
	}

	events, err := fn(h)
	if err != nil {
		return nil, err
	}

	if err := t.store.SaveHand(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to save hand %d: %w", handID, err)
	}

	for _, e := range events {
		t.bus.Publish(e)
	}
	return h, nil
}

func (t *Tracker) base(handID int64) eventBase {
	return eventBase{Hand: handID, At: t.clock.Now().UTC()}
}

// Hand loads a hand.
func (t *Tracker) Hand(ctx context.Context, id int64) (*game.Hand, error) {
	return t.store.GetHand(ctx, id)
}

// Hands lists the hands of a session, or every hand when sessionID is zero.
func (t *Tracker) Hands(ctx context.Context, sessionID int64) ([]*game.Hand, error) {
	return t.store.ListHands(ctx, sessionID)
}

// DeleteHand removes a hand with its players and actions.
func (t *Tracker) DeleteHand(ctx context.Context, id int64) error {
	unlock := t.lock(id)
	defer unlock()

	if err := t.store.DeleteHand(ctx, id); err != nil {
		return err
	}
	t.logger.Info("Deleted hand", "hand", id)
	return nil
}
