package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundone"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundtwo"
	"github.com/gokatarajesh/synergy-debrief/internal/session"
)

// Options configures a Game. Zero values fall back to production defaults.
type Options struct {
	RoundSeconds       int           // default: 1200
	TickInterval       time.Duration // default: 1s
	ChangeTopicSeconds int           // default: 60
	ScoringConfig      roundtwo.ScoringConfig
	// Seed makes every random draw reproducible. Zero picks a random seed.
	Seed          uint64
	TickerFactory session.TickerFactory
}

const defaultRoundSeconds = 1200

// Game owns one playthrough: the phase machine, session state, both round engines and the round timer.
// Commands and timer ticks are serialised by a mutex.
type Game struct {
	mu       sync.Mutex
	store    *content.Store
	opts     Options
	scoring  *roundtwo.Engine
	rng      *rand.Rand
	timer    *session.Timer
	notifier Notifier
	logger   zerolog.Logger

	phase   Phase
	state   *session.State
	r1      *roundone.Engine
	quiz    *roundtwo.Quiz
	intense bool
	gen     uint64
	closed  bool
}

// New creates a game on the landing phase.
func New(store *content.Store, notifier Notifier, opts Options, logger zerolog.Logger) *Game {
	if opts.RoundSeconds <= 0 {
		opts.RoundSeconds = defaultRoundSeconds
	}
	if opts.ChangeTopicSeconds <= 0 {
		opts.ChangeTopicSeconds = roundone.DefaultChangeTopicSeconds
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	g := &Game{
		store:    store,
		opts:     opts,
		scoring:  roundtwo.NewEngine(opts.ScoringConfig),
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		timer:    session.NewTimer(opts.TickInterval, opts.TickerFactory),
		notifier: notifier,
		logger:   logger.With().Str("component", "game").Logger(),
	}
	g.reset()
	return g
}

// reset reinitialises all per-playthrough state. Callers stop the timer first.
func (g *Game) reset() {
	g.phase = PhaseLanding
	g.state = session.NewState(g.store, g.opts.RoundSeconds, g.rng)
	g.r1 = roundone.NewEngine(g.store, g.state, g.opts.ChangeTopicSeconds)
	g.quiz = nil
	g.intense = false
}

// Seed returns the seed driving this game's random draws.
func (g *Game) Seed() uint64 { return g.opts.Seed }

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Snapshot returns the current view without emitting an event.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) guard(want Phase) error {
	if g.closed {
		return ErrClosed
	}
	if g.phase != want {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongPhase, g.phase, want)
	}
	return nil
}

// Begin moves from the landing screen to the briefing.
func (g *Game) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseLanding); err != nil {
		return err
	}
	g.phase = PhaseBriefing
	g.emit(Event{Type: EventStateChanged})
	return nil
}

// StartRoundOne shows the question list and starts the clock.
func (g *Game) StartRoundOne() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseBriefing); err != nil {
		return err
	}
	g.phase = PhaseRoundOne
	g.gen++
	gen := g.gen
	g.timer.Start(func() { g.onTick(gen) })
	g.logger.Debug().Uint64("seed", g.opts.Seed).Int("budget_seconds", g.state.Remaining()).Msg("round one started")
	g.emit(Event{Type: EventRoundOneStarted})
	return nil
}

// SelectQuestion draws a response for the question.
// An exhausted question returns nil without error and changes nothing.
func (g *Game) SelectQuestion(id string) (*content.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseRoundOne); err != nil {
		return nil, err
	}
	res, err := g.r1.SelectQuestion(id)
	if err != nil {
		return nil, fmt.Errorf("select question %q: %w", id, err)
	}
	if res.Response == nil {
		g.logger.Warn().Str("question_id", id).Msg("question selected with empty pool")
		g.emit(Event{Type: EventStateChanged})
		return nil, nil
	}
	g.applyRoundOne(res)
	return res.Response, nil
}

// SelectFollowUp reveals one of the follow-ups on offer.
func (g *Game) SelectFollowUp(id string) (*content.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseRoundOne); err != nil {
		return nil, err
	}
	res, err := g.r1.SelectFollowUp(id)
	if err != nil {
		return nil, fmt.Errorf("select follow-up %q: %w", id, err)
	}
	g.applyRoundOne(res)
	return res.Response, nil
}

// ChangeTopic leaves the current topic for the question list at a fixed time cost.
func (g *Game) ChangeTopic() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseRoundOne); err != nil {
		return err
	}
	res, err := g.r1.ChangeTopic()
	if err != nil {
		return fmt.Errorf("change topic: %w", err)
	}
	g.intense = false
	g.emit(Event{Type: EventStateChanged})
	if res.Ended {
		g.endRoundOne()
	}
	return nil
}

func (g *Game) applyRoundOne(res roundone.Result) {
	g.intense = res.Intense
	g.emit(Event{Type: EventResponseShown})
	if res.NewTrait != "" {
		g.emit(Event{Type: EventTraitDiscovered, TraitID: res.NewTrait})
	}
	if res.Ended {
		g.endRoundOne()
	}
}

func (g *Game) onTick(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen || g.phase != PhaseRoundOne || g.closed {
		return
	}
	ended := g.r1.Tick()
	g.emit(Event{Type: EventTimerTick})
	if ended {
		g.endRoundOne()
	}
}

// endRoundOne stops the clock and opens the debrief. Called with the lock held.
func (g *Game) endRoundOne() {
	g.timer.Stop()
	g.gen++
	g.quiz = roundtwo.NewQuiz(g.store, g.scoring, g.rng)
	g.phase = PhaseRoundTwo
	g.intense = false

	g.logger.Debug().
		Int("traits_discovered", g.state.DiscoveredCount()).
		Int("viewed", g.state.ViewedCount()).
		Int("debrief_questions", g.quiz.Len()).
		Msg("round one ended")
	g.emit(Event{Type: EventRoundOneEnded})
	g.emit(Event{Type: EventDebriefStarted})
	if g.quiz.Complete() {
		g.emit(Event{Type: EventDebriefComplete})
	}
}

// SelectDebriefAnswer grades the first answer to a debrief question. Repeat answers return the locked grade.
func (g *Game) SelectDebriefAnswer(questionID string, answer int) (roundtwo.Grade, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseRoundTwo); err != nil {
		return roundtwo.Grade{}, err
	}
	grade, first, err := g.quiz.Answer(questionID, answer, g.state)
	if err != nil {
		return roundtwo.Grade{}, fmt.Errorf("answer %q: %w", questionID, err)
	}
	if !first {
		return grade, nil
	}

	g.state.RecordCorrectAnswer(grade.Points)
	g.emit(Event{Type: EventAnswerGraded, QuestionID: questionID, Grade: &grade})
	if g.quiz.Complete() {
		g.emit(Event{Type: EventDebriefComplete})
	}
	return grade, nil
}

// Finish shows the final summary once every debrief question is answered.
func (g *Game) Finish() (FinalMetrics, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.guard(PhaseRoundTwo); err != nil {
		return FinalMetrics{}, err
	}
	if !g.quiz.Complete() {
		return FinalMetrics{}, ErrDebriefIncomplete
	}
	g.phase = PhaseFinal
	m := g.finalMetrics()
	g.logger.Info().
		Int("traits_discovered", m.TraitsDiscovered).
		Int("traits_total", m.TraitsTotal).
		Int("synergy_score", m.SynergyScore).
		Msg("game finished")
	g.emit(Event{Type: EventGameFinished})
	return m, nil
}

// Restart abandons the playthrough from any phase and returns to the landing screen with a fresh session.
func (g *Game) Restart() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	g.timer.Stop()
	g.gen++
	g.reset()
	g.emit(Event{Type: EventGameReset})
	return nil
}

// Close stops the clock and rejects further commands. It waits for the tick goroutine to exit.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.timer.Stop()
	g.gen++
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.timer.Wait(ctx); err != nil {
		g.logger.Warn().Err(err).Msg("timer did not stop")
	}
}

// TimerRunning reports whether the round clock is ticking.
func (g *Game) TimerRunning() bool { return g.timer.Running() }

func (g *Game) emit(e Event) {
	e.Snapshot = g.snapshot()
	g.notifier.Notify(e)
}

func (g *Game) finalMetrics() FinalMetrics {
	return FinalMetrics{
		TraitsDiscovered: g.state.DiscoveredCount(),
		TraitsTotal:      g.store.TraitCount(),
		SynergyScore:     g.state.Score(),
	}
}
