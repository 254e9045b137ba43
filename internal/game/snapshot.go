package game

import (
	"fmt"
	"strconv"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
)

const (
	warningSeconds  = 180
	criticalSeconds = 60
)

// snapshot builds the renderer view. Called with the lock held.
func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		Phase:  g.phase,
		Traits: g.traitViews(),
		Timer:  g.timerView(),
		Score:  g.state.Score(),
	}

	switch g.phase {
	case PhaseRoundOne:
		s.Questions = g.questionViews()
		s.Response = g.responseView()
	case PhaseRoundTwo, PhaseFinal:
		s.Debrief = g.debriefViews()
		s.Complete = g.quiz != nil && g.quiz.Complete()
	}
	if g.phase == PhaseFinal {
		m := g.finalMetrics()
		s.Final = &m
	}
	return s
}

func (g *Game) traitViews() []TraitView {
	traits := g.store.Traits()
	out := make([]TraitView, len(traits))
	for i, t := range traits {
		out[i] = TraitView{ID: t.ID, Name: t.Name, Icon: t.Icon, Discovered: g.state.HasDiscovered(t.ID)}
	}
	return out
}

func (g *Game) questionViews() []QuestionView {
	questions := g.store.Questions()
	topicOpen := g.r1.TopicOpen()
	out := make([]QuestionView, len(questions))
	for i, q := range questions {
		out[i] = QuestionView{ID: q.ID, Text: q.Text, Enabled: !topicOpen && g.r1.QuestionEnabled(q.ID)}
	}
	return out
}

func (g *Game) responseView() *ResponseView {
	cur := g.r1.Current()
	if cur == nil {
		return nil
	}
	v := &ResponseView{ID: cur.ID, Text: cur.Text, EdgeColor: cur.EdgeColor, Intense: g.intense}
	offered := g.r1.Offered()
	if len(offered) == 0 {
		return v
	}
	v.FollowUps = make([]OptionView, len(offered))
	for i, f := range offered {
		v.FollowUps[i] = OptionView{ID: f.ID, Label: FollowUpLabel(f), CostSeconds: f.CostSeconds()}
	}
	cost := g.r1.ChangeTopicSeconds()
	v.ChangeTopic = &OptionView{Label: ChangeTopicLabel(cost), CostSeconds: cost}
	return v
}

func (g *Game) timerView() TimerView {
	remaining := g.state.Remaining()
	display := g.state.DisplayRemaining()
	return TimerView{
		RemainingSeconds: remaining,
		DisplaySeconds:   display,
		Clock:            FormatClock(display),
		Level:            LevelFor(display),
		Running:          g.timer.Running(),
	}
}

func (g *Game) debriefViews() []DebriefView {
	if g.quiz == nil {
		return nil
	}
	items := g.quiz.Items()
	out := make([]DebriefView, len(items))
	for i, it := range items {
		v := DebriefView{ID: it.Question.ID, Text: it.Question.Text, Answers: it.Question.Answers, Locked: it.Locked}
		if it.Locked {
			grade := it.Grade
			v.Result = &grade
		}
		out[i] = v
	}
	return out
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// LevelFor maps remaining seconds to a timer level.
func LevelFor(seconds int) TimerLevel {
	switch {
	case seconds <= criticalSeconds:
		return TimerCritical
	case seconds <= warningSeconds:
		return TimerWarning
	default:
		return TimerNormal
	}
}

// FollowUpLabel is the option text for a follow-up, e.g. "Which ones? (-1 min)".
func FollowUpLabel(r content.Response) string {
	return fmt.Sprintf("%s (-%s min)", r.Label(), strconv.FormatFloat(r.TimeCost, 'f', -1, 64))
}

// ChangeTopicLabel is the option text for leaving a topic.
func ChangeTopicLabel(seconds int) string {
	return fmt.Sprintf("Change topic (-%s min)", strconv.FormatFloat(float64(seconds)/60, 'f', -1, 64))
}
