// Package contenttest provides small content documents for tests.
package contenttest

import (
	"fmt"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
)

// Document returns a compact but complete game definition:
// two traits, two questions (three and one responses), nested follow-ups,
// two core debrief questions and six extras.
func Document() content.Document {
	doc := content.Document{
		Traits: []content.Trait{
			{ID: "curious", Name: "Curious", Icon: "?"},
			{ID: "steady", Name: "Steady", Icon: "="},
		},
		IntroQuestions: []content.Question{
			{
				ID:   "q-weekend",
				Text: "How was your weekend?",
				Responses: []content.Response{
					{ID: "r-hike", Text: "Went hiking.", Trait: "steady", TimeCost: 1, EdgeColor: "green"},
					{ID: "r-books", Text: "Read three books.", Trait: "curious", TimeCost: 2, EdgeColor: "blue",
						FollowUps: []content.Response{
							{ID: "f-which", Prompt: "Which ones?", Text: "Mostly history.", TimeCost: 1,
								FollowUps: []content.Response{
									{ID: "f-why", Prompt: "Why history?", Text: "Patterns repeat.", Trait: "steady", TimeCost: 0.5},
								}},
							{ID: "f-fast", Prompt: "That's fast!", Text: "I skim.", TimeCost: 0},
						}},
					{ID: "r-nothing", Text: "Nothing much.", TimeCost: 0, EdgeColor: "grey"},
				},
			},
			{
				ID:   "q-role",
				Text: "What do you do?",
				Responses: []content.Response{
					{ID: "r-eng", Text: "I build bridges.", TimeCost: 1, EdgeColor: "orange"},
				},
			},
		},
		DebriefQuestions: []content.DebriefQuestion{
			{ID: "d-weekend", Text: "What did they do on the weekend?",
				Answers: []string{"Hiking", "Reading", content.FallbackAnswer}, Correct: 0, Requires: []string{"r-hike"}},
			{ID: "d-books", Text: "What genre do they read?",
				Answers: []string{"Fiction", "History", content.FallbackAnswer}, Correct: 1, Requires: []string{"f-which", "f-why"}},
		},
	}
	for i := 0; i < 6; i++ {
		doc.ExtraDebriefPool = append(doc.ExtraDebriefPool, content.DebriefQuestion{
			ID:       fmt.Sprintf("x-%d", i),
			Text:     fmt.Sprintf("Extra question %d", i),
			Answers:  []string{"Yes", "No", content.FallbackAnswer},
			Correct:  0,
			Requires: []string{"r-eng"},
		})
	}
	return doc
}

// Store returns a validated store over Document. It panics on invalid fixtures.
func Store() *content.Store {
	s, err := content.NewStore(Document())
	if err != nil {
		panic(err)
	}
	return s
}
