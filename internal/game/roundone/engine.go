package roundone

import (
	"errors"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/session"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownFollowUp = errors.New("follow-up not offered")
	ErrTopicOpen       = errors.New("follow-ups are being offered, change topic first")
	ErrNoTopicOpen     = errors.New("no topic to leave")
	ErrRoundOver       = errors.New("round one is over")
)

// DefaultChangeTopicSeconds is the cost of leaving a topic with follow-ups still on offer.
const DefaultChangeTopicSeconds = 60

// Result describes the effect of one Round One action.
type Result struct {
	QuestionID string
	// Response is nil when the selected question had nothing left to draw.
	Response *content.Response
	// NewTrait is the trait first discovered by this action, if any.
	NewTrait    string
	Intense     bool
	CostSeconds int
	Ended       bool
}

// Engine drives the dialogue tree for one session. It is not safe for concurrent use.
type Engine struct {
	state           *session.State
	store           *content.Store
	changeTopicCost int

	questionID string
	current    *content.Response
	offered    []content.Response
	ended      bool
}

// NewEngine binds an engine to a session. A non-positive changeTopicSeconds uses the default.
func NewEngine(store *content.Store, state *session.State, changeTopicSeconds int) *Engine {
	if changeTopicSeconds <= 0 {
		changeTopicSeconds = DefaultChangeTopicSeconds
	}
	return &Engine{
		state:           state,
		store:           store,
		changeTopicCost: changeTopicSeconds,
		ended:           state.Expired(),
	}
}

// SelectQuestion draws a random unseen response for the question.
// An exhausted pool yields a Result with a nil Response and no error.
func (e *Engine) SelectQuestion(id string) (Result, error) {
	if e.ended {
		return Result{}, ErrRoundOver
	}
	if _, ok := e.store.Question(id); !ok {
		return Result{}, ErrUnknownQuestion
	}
	if len(e.offered) > 0 {
		return Result{}, ErrTopicOpen
	}

	r, ok := e.state.DrawResponse(id)
	if !ok {
		return Result{QuestionID: id}, nil
	}
	e.questionID = id
	return e.show(r), nil
}

// SelectFollowUp reveals one of the follow-ups currently on offer.
func (e *Engine) SelectFollowUp(id string) (Result, error) {
	if e.ended {
		return Result{}, ErrRoundOver
	}
	for i := range e.offered {
		if e.offered[i].ID == id {
			f := e.offered[i]
			return e.show(&f), nil
		}
	}
	return Result{}, ErrUnknownFollowUp
}

// ChangeTopic abandons the offered follow-ups and returns to the question list.
func (e *Engine) ChangeTopic() (Result, error) {
	if e.ended {
		return Result{}, ErrRoundOver
	}
	if len(e.offered) == 0 {
		return Result{}, ErrNoTopicOpen
	}
	e.offered = nil
	e.current = nil
	e.questionID = ""
	e.state.ConsumeTime(e.changeTopicCost)
	return Result{CostSeconds: e.changeTopicCost, Ended: e.checkExpired()}, nil
}

// Tick deducts one second and reports whether the round has ended.
func (e *Engine) Tick() bool {
	if e.ended {
		return true
	}
	e.state.ConsumeTime(1)
	return e.checkExpired()
}

func (e *Engine) show(r *content.Response) Result {
	res := Result{QuestionID: e.questionID, Response: r, CostSeconds: r.CostSeconds()}

	// Intensity is judged before the trait is recorded.
	if r.Trait != "" && !e.state.HasDiscovered(r.Trait) {
		res.Intense = true
	}
	e.state.MarkViewed(r.ID)
	if r.Trait != "" && e.state.DiscoverTrait(r.Trait) {
		res.NewTrait = r.Trait
	}
	e.state.ConsumeTime(res.CostSeconds)

	e.current = r
	e.offered = r.FollowUps
	if len(e.offered) == 0 {
		e.questionID = ""
	}
	res.Ended = e.checkExpired()
	return res
}

func (e *Engine) checkExpired() bool {
	if !e.ended && e.state.Expired() {
		e.ended = true
		e.offered = nil
	}
	return e.ended
}

// Ended reports whether the time budget has run out.
func (e *Engine) Ended() bool { return e.ended }

// Current is the most recently shown response or follow-up, nil on the question list.
func (e *Engine) Current() *content.Response { return e.current }

// Offered returns the follow-ups currently available. When empty the question list is active.
func (e *Engine) Offered() []content.Response { return e.offered }

// TopicOpen reports whether the player is inside a topic and may change it.
func (e *Engine) TopicOpen() bool { return len(e.offered) > 0 }

// QuestionEnabled reports whether a question still has responses to draw.
func (e *Engine) QuestionEnabled(id string) bool { return e.state.PoolSize(id) > 0 }

// ChangeTopicSeconds is the configured change-topic cost.
func (e *Engine) ChangeTopicSeconds() int { return e.changeTopicCost }
