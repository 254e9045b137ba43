package game

import (
	"errors"

	"github.com/gokatarajesh/synergy-debrief/internal/game/roundone"
	"github.com/gokatarajesh/synergy-debrief/internal/game/roundtwo"
)

// Phase is the screen the session is on.
type Phase string

const (
	PhaseLanding  Phase = "landing"
	PhaseBriefing Phase = "briefing"
	PhaseRoundOne Phase = "round_one"
	PhaseRoundTwo Phase = "round_two"
	PhaseFinal    Phase = "final"
)

var (
	ErrWrongPhase        = errors.New("command not allowed in current phase")
	ErrClosed            = errors.New("game closed")
	ErrDebriefIncomplete = errors.New("debrief has unanswered questions")
	ErrUnknownQuestion   = roundone.ErrUnknownQuestion
	ErrUnknownFollowUp   = roundone.ErrUnknownFollowUp
	ErrTopicOpen         = roundone.ErrTopicOpen
	ErrNoTopicOpen       = roundone.ErrNoTopicOpen
	ErrUnknownDebrief    = roundtwo.ErrUnknownQuestion
	ErrAnswerOutOfRange  = roundtwo.ErrAnswerOutOfRange
)

// EventType names a state change pushed to the renderer.
type EventType string

const (
	EventStateChanged    EventType = "state_changed"
	EventRoundOneStarted EventType = "round_one_started"
	EventTimerTick       EventType = "timer_tick"
	EventResponseShown   EventType = "response_shown"
	EventTraitDiscovered EventType = "trait_discovered"
	EventRoundOneEnded   EventType = "round_one_ended"
	EventDebriefStarted  EventType = "debrief_started"
	EventAnswerGraded    EventType = "answer_graded"
	EventDebriefComplete EventType = "debrief_complete"
	EventGameFinished    EventType = "game_finished"
	EventGameReset       EventType = "game_reset"
)

// Event is one notification. Snapshot is the full state after the change.
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"snapshot"`
	// TraitID is set on trait_discovered.
	TraitID string `json:"trait_id,omitempty"`
	// QuestionID and Grade are set on answer_graded.
	QuestionID string          `json:"question_id,omitempty"`
	Grade      *roundtwo.Grade `json:"grade,omitempty"`
}

// Notifier receives events. Notify is called with the game lock held and must not call back into the Game.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Snapshot is a renderer-ready view of the session.
type Snapshot struct {
	Phase     Phase          `json:"phase"`
	Questions []QuestionView `json:"questions,omitempty"`
	Response  *ResponseView  `json:"response,omitempty"`
	Traits    []TraitView    `json:"traits"`
	Timer     TimerView      `json:"timer"`
	Debrief   []DebriefView  `json:"debrief,omitempty"`
	Complete  bool           `json:"debrief_complete,omitempty"`
	Score     int            `json:"score"`
	Final     *FinalMetrics  `json:"final,omitempty"`
}

type QuestionView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

type OptionView struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label"`
	CostSeconds int    `json:"cost_seconds"`
}

type ResponseView struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	EdgeColor   string       `json:"edge_color,omitempty"`
	Intense     bool         `json:"intense"`
	FollowUps   []OptionView `json:"follow_ups,omitempty"`
	ChangeTopic *OptionView  `json:"change_topic,omitempty"`
}

type TraitView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Discovered bool   `json:"discovered"`
}

// TimerLevel drives the urgency styling of the clock.
type TimerLevel string

const (
	TimerNormal   TimerLevel = "normal"
	TimerWarning  TimerLevel = "warning"
	TimerCritical TimerLevel = "critical"
)

type TimerView struct {
	RemainingSeconds int        `json:"remaining_seconds"`
	DisplaySeconds   int        `json:"display_seconds"`
	Clock            string     `json:"clock"`
	Level            TimerLevel `json:"level"`
	Running          bool       `json:"running"`
}

type DebriefView struct {
	ID      string          `json:"id"`
	Text    string          `json:"text"`
	Answers []string        `json:"answers"`
	Locked  bool            `json:"locked"`
	Result  *roundtwo.Grade `json:"result,omitempty"`
}

type FinalMetrics struct {
	TraitsDiscovered int `json:"traits_discovered"`
	TraitsTotal      int `json:"traits_total"`
	SynergyScore     int `json:"synergy_score"`
}
