package content

import "math"

// FallbackAnswer is the debrief answer that is correct when none of a question's required content was viewed.
const FallbackAnswer = "We didn't discuss that"

// Trait is a discoverable session-level flag.
type Trait struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// Response is a unit of dialogue content. Follow-ups share the same shape:
// Prompt is the option label shown before a follow-up is chosen, Text is what it reveals.
type Response struct {
	ID        string     `json:"id" yaml:"id"`
	Text      string     `json:"text" yaml:"text"`
	Prompt    string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Trait     string     `json:"trait,omitempty" yaml:"trait,omitempty"`
	TimeCost  float64    `json:"time_cost" yaml:"time_cost"` // minutes
	EdgeColor string     `json:"edge_color,omitempty" yaml:"edge_color,omitempty"`
	FollowUps []Response `json:"follow_ups,omitempty" yaml:"follow_ups,omitempty"`
}

// CostSeconds converts the minute-denominated time cost into whole seconds.
func (r Response) CostSeconds() int {
	if r.TimeCost <= 0 {
		return 0
	}
	return int(math.Round(r.TimeCost * 60))
}

// Label returns the text used when the response is offered as a follow-up option.
func (r Response) Label() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return r.Text
}

// Question is a top-level conversation topic with a pool of candidate responses.
type Question struct {
	ID        string     `json:"id" yaml:"id"`
	Text      string     `json:"text" yaml:"text"`
	Responses []Response `json:"responses" yaml:"responses"`
}

// DebriefQuestion is a Round Two question gated on previously viewed content.
type DebriefQuestion struct {
	ID       string   `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Answers  []string `json:"answers" yaml:"answers"`
	Correct  int      `json:"correct" yaml:"correct"`
	Requires []string `json:"requires" yaml:"requires"`
}

// FallbackIndex returns the position of FallbackAnswer among the answers, or -1.
func (q DebriefQuestion) FallbackIndex() int {
	for i, a := range q.Answers {
		if a == FallbackAnswer {
			return i
		}
	}
	return -1
}

// Document is the authored game definition as loaded from disk or network.
type Document struct {
	Traits           []Trait           `json:"traits" yaml:"traits"`
	IntroQuestions   []Question        `json:"intro_questions" yaml:"intro_questions"`
	DebriefQuestions []DebriefQuestion `json:"debrief_questions" yaml:"debrief_questions"`
	ExtraDebriefPool []DebriefQuestion `json:"extra_debrief_pool" yaml:"extra_debrief_pool"`
}
