// Package simulate plays complete games offline with a seeded bot. It drives the round clock by hand,
// so a twenty minute round finishes in milliseconds and the same seeds always produce the same game.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/game"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundtwo"
	"github.com/gokatarajesh/synergy-debrief/internal/session"
)

const (
	defaultThinkTicks   = 15
	defaultFollowUpBias = 0.75
)

// Options configures one simulated playthrough.
type Options struct {
	Game game.Options
	// BotSeed drives the bot's choices, independently of the game seed.
	BotSeed uint64
	// ThinkTicks is how many ticks pass before each action. Zero uses the default, negative disables.
	ThinkTicks int
	// FollowUpBias is the probability of taking a follow-up instead of changing topic.
	FollowUpBias float64
}

// Result summarises a finished playthrough.
type Result struct {
	Seed    uint64                 `json:"seed"`
	Actions int                    `json:"actions"`
	Events  map[game.EventType]int `json:"events"`
	Grades  []roundtwo.Grade       `json:"grades"`
	Final   game.FinalMetrics      `json:"final"`
}

type bot struct {
	g      *game.Game
	clock  *session.ManualClock
	events *eventCounter
	rng    *rand.Rand
	opts   Options
	ticks  int
}

// Run plays one game from the landing screen to the final summary. notifier may be nil.
func Run(ctx context.Context, store *content.Store, notifier game.Notifier, opts Options, logger zerolog.Logger) (Result, error) {
	if opts.ThinkTicks < 0 {
		opts.ThinkTicks = 0
	} else if opts.ThinkTicks == 0 {
		opts.ThinkTicks = defaultThinkTicks
	}
	if opts.FollowUpBias <= 0 || opts.FollowUpBias > 1 {
		opts.FollowUpBias = defaultFollowUpBias
	}

	clock := &session.ManualClock{}
	opts.Game.TickerFactory = clock.NewTicker
	counter := newEventCounter(notifier)

	g := game.New(store, counter, opts.Game, logger)
	defer g.Close()

	b := &bot{
		g:      g,
		clock:  clock,
		events: counter,
		rng:    rand.New(rand.NewPCG(opts.BotSeed, opts.BotSeed^0x5bd1e995)),
		opts:   opts,
	}
	res := Result{Seed: g.Seed()}

	if err := g.Begin(); err != nil {
		return res, err
	}
	if err := g.StartRoundOne(); err != nil {
		return res, err
	}

	for g.Phase() == game.PhaseRoundOne {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		b.think()
		acted, err := b.act(g.Snapshot())
		switch {
		case errors.Is(err, game.ErrWrongPhase):
			// the clock ran out while deciding
		case err != nil:
			return res, err
		case acted:
			res.Actions++
		default:
			b.runOut()
		}
	}

	grades, err := b.debrief(ctx)
	if err != nil {
		return res, err
	}
	res.Grades = grades

	final, err := g.Finish()
	if err != nil {
		return res, fmt.Errorf("finish: %w", err)
	}
	res.Final = final
	res.Events = counter.snapshot()
	return res, nil
}

// think lets ThinkTicks seconds pass, stopping early if the round ends.
func (b *bot) think() {
	for i := 0; i < b.opts.ThinkTicks && b.tick(); i++ {
	}
	b.events.waitTicks(b.ticks)
}

// runOut ticks until the clock stops. Used once nothing is left to ask.
func (b *bot) runOut() {
	for b.tick() {
	}
	b.events.waitTicks(b.ticks)
}

// tick hands one tick to the game clock. The game processes it asynchronously.
func (b *bot) tick() bool {
	if !b.clock.Last().Tick() {
		return false
	}
	b.ticks++
	return true
}

func (b *bot) act(snap game.Snapshot) (bool, error) {
	if snap.Phase != game.PhaseRoundOne {
		return false, nil
	}
	if r := snap.Response; r != nil && r.ChangeTopic != nil {
		if b.rng.Float64() < b.opts.FollowUpBias {
			f := r.FollowUps[b.rng.IntN(len(r.FollowUps))]
			_, err := b.g.SelectFollowUp(f.ID)
			return true, err
		}
		return true, b.g.ChangeTopic()
	}

	var enabled []game.QuestionView
	for _, q := range snap.Questions {
		if q.Enabled {
			enabled = append(enabled, q)
		}
	}
	if len(enabled) == 0 {
		return false, nil
	}
	q := enabled[b.rng.IntN(len(enabled))]
	_, err := b.g.SelectQuestion(q.ID)
	return true, err
}

// debrief answers every question with a uniformly random choice.
func (b *bot) debrief(ctx context.Context) ([]roundtwo.Grade, error) {
	snap := b.g.Snapshot()
	grades := make([]roundtwo.Grade, 0, len(snap.Debrief))
	for _, q := range snap.Debrief {
		if err := ctx.Err(); err != nil {
			return grades, err
		}
		grade, err := b.g.SelectDebriefAnswer(q.ID, b.rng.IntN(len(q.Answers)))
		if err != nil {
			return grades, err
		}
		grades = append(grades, grade)
	}
	return grades, nil
}

// eventCounter tallies events and lets the bot wait for the game to catch up with the ticks it handed out.
// Every accepted tick emits exactly one timer_tick while Round One runs. Once the round has ended the timer
// may swallow a tick that was already handed over, so the wait stops there too.
type eventCounter struct {
	mu     sync.Mutex
	cond   *sync.Cond
	next   game.Notifier
	counts map[game.EventType]int
}

func newEventCounter(next game.Notifier) *eventCounter {
	c := &eventCounter{next: next, counts: make(map[game.EventType]int)}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *eventCounter) Notify(e game.Event) {
	c.mu.Lock()
	c.counts[e.Type]++
	c.cond.Broadcast()
	c.mu.Unlock()
	if c.next != nil {
		c.next.Notify(e)
	}
}

func (c *eventCounter) waitTicks(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.counts[game.EventTimerTick] < n && c.counts[game.EventRoundOneEnded] == 0 {
		c.cond.Wait()
	}
}

func (c *eventCounter) snapshot() map[game.EventType]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[game.EventType]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
