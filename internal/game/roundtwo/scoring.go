package roundtwo

import "github.com/gokatarajesh/synergy-debrief/internal/content"

// ScoringConfig holds the debrief constants.
type ScoringConfig struct {
	PointsPerCorrect int // default: 10
	ExtraCount       int // default: 5, extras drawn per session
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PointsPerCorrect: 10,
		ExtraCount:       5,
	}
}

// Viewed answers whether any of the given content ids was shown during Round One.
type Viewed interface {
	ViewedAny(ids []string) bool
}

// Grade is the outcome of one debrief answer.
type Grade struct {
	Selected        int  `json:"selected"`
	Correct         bool `json:"correct"`
	RequirementsMet bool `json:"requirements_met"`
	// CorrectIndex is the answer that would have scored, or -1 when none can.
	CorrectIndex int `json:"correct_index"`
	Points       int `json:"points"`
}

// Engine grades debrief answers against what the player actually saw.
type Engine struct {
	config ScoringConfig
}

// NewEngine creates a grading engine. Non-positive values fall back to the defaults.
func NewEngine(config ScoringConfig) *Engine {
	def := DefaultScoringConfig()
	if config.PointsPerCorrect <= 0 {
		config.PointsPerCorrect = def.PointsPerCorrect
	}
	if config.ExtraCount <= 0 {
		config.ExtraCount = def.ExtraCount
	}
	return &Engine{config: config}
}

// Config returns the effective configuration.
func (e *Engine) Config() ScoringConfig { return e.config }

// Grade scores one selection.
// If none of the required ids were viewed, only the fallback answer is correct.
// Otherwise only the stored correct index is, even if the fallback is among the options.
func (e *Engine) Grade(q content.DebriefQuestion, selected int, viewed Viewed) Grade {
	g := Grade{Selected: selected}
	g.RequirementsMet = viewed.ViewedAny(q.Requires)

	if g.RequirementsMet {
		g.CorrectIndex = q.Correct
		g.Correct = selected == q.Correct
	} else {
		g.CorrectIndex = q.FallbackIndex()
		g.Correct = selected >= 0 && selected < len(q.Answers) && q.Answers[selected] == content.FallbackAnswer
	}

	if g.Correct {
		g.Points = e.config.PointsPerCorrect
	}
	return g
}

// Summary aggregates graded answers.
type Summary struct {
	Total    int     `json:"total"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Points   int     `json:"points"`
	Accuracy float64 `json:"accuracy"`
}

// Summarize totals a set of grades. total is the number of questions in the quiz.
func Summarize(grades []Grade, total int) Summary {
	s := Summary{Total: total, Answered: len(grades)}
	for _, g := range grades {
		if g.Correct {
			s.Correct++
		}
		s.Points += g.Points
	}
	if s.Answered > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Answered)
	}
	return s
}
