package roundtwo

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/content/contenttest"
)

type viewedSet map[string]bool

func (v viewedSet) ViewedAny(ids []string) bool {
	for _, id := range ids {
		if v[id] {
			return true
		}
	}
	return false
}

func TestAssembleKeepsCoreAndDrawsDistinctExtras(t *testing.T) {
	store := contenttest.Store()
	core := store.CoreDebrief()

	for seed := uint64(0); seed < 50; seed++ {
		qs := Assemble(core, store.ExtraDebrief(), rand.New(rand.NewPCG(seed, 1)), 5)
		require.Len(t, qs, len(core)+5)

		for i, c := range core {
			assert.Equal(t, c.ID, qs[i].ID, "core questions stay first and in order")
		}

		poolIDs := map[string]bool{}
		for _, x := range store.ExtraDebrief() {
			poolIDs[x.ID] = true
		}
		seen := map[string]bool{}
		for _, x := range qs[len(core):] {
			assert.True(t, poolIDs[x.ID], "extra %s not from pool", x.ID)
			assert.False(t, seen[x.ID], "extra %s drawn twice", x.ID)
			seen[x.ID] = true
		}
	}
}

func TestAssembleVariesWithSeed(t *testing.T) {
	store := contenttest.Store()
	picks := map[string]bool{}
	for seed := uint64(0); seed < 30; seed++ {
		qs := Assemble(nil, store.ExtraDebrief(), rand.New(rand.NewPCG(seed, 9)), 1)
		picks[qs[0].ID] = true
	}
	assert.Greater(t, len(picks), 1)
}

func TestAssembleSmallPoolTakenWhole(t *testing.T) {
	store := contenttest.Store()
	qs := Assemble(store.CoreDebrief(), store.ExtraDebrief()[:2], rand.New(rand.NewPCG(1, 1)), 5)
	assert.Len(t, qs, 4)
}

func TestGradeRequirementsNotMet(t *testing.T) {
	e := NewEngine(DefaultScoringConfig())
	q := contenttest.Document().DebriefQuestions[0] // requires r-hike, correct 0
	viewed := viewedSet{"r-books": true}

	g := e.Grade(q, 2, viewed)
	assert.True(t, g.Correct, "fallback is the only correct answer")
	assert.False(t, g.RequirementsMet)
	assert.Equal(t, 10, g.Points)
	assert.Equal(t, 2, g.CorrectIndex)

	g = e.Grade(q, 0, viewed)
	assert.False(t, g.Correct, "the stored index does not count without the content")
	assert.Equal(t, 0, g.Points)
	assert.Equal(t, 2, g.CorrectIndex)
}

func TestGradeRequirementsMet(t *testing.T) {
	e := NewEngine(DefaultScoringConfig())
	q := contenttest.Document().DebriefQuestions[1] // requires f-which or f-why, correct 1
	viewed := viewedSet{"f-why": true}

	g := e.Grade(q, 1, viewed)
	assert.True(t, g.Correct)
	assert.True(t, g.RequirementsMet, "any one required id is enough")
	assert.Equal(t, 1, g.CorrectIndex)

	g = e.Grade(q, 2, viewed)
	assert.False(t, g.Correct, "fallback is wrong once the content was seen")
	assert.Equal(t, 1, g.CorrectIndex)
}

func TestGradeWithoutFallbackOption(t *testing.T) {
	e := NewEngine(ScoringConfig{})
	q := content.DebriefQuestion{ID: "d", Answers: []string{"a", "b"}, Correct: 0, Requires: []string{"r"}}

	g := e.Grade(q, 0, viewedSet{})
	assert.False(t, g.Correct)
	assert.Equal(t, -1, g.CorrectIndex)
}

func TestQuizLocksFirstAnswer(t *testing.T) {
	store := contenttest.Store()
	quiz := NewQuiz(store, NewEngine(DefaultScoringConfig()), rand.New(rand.NewPCG(3, 3)))
	viewed := viewedSet{"r-hike": true}

	g, first, err := quiz.Answer("d-weekend", 0, viewed)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, g.Correct)

	again, first, err := quiz.Answer("d-weekend", 1, viewed)
	require.NoError(t, err)
	assert.False(t, first)
	assert.Equal(t, g, again, "locked questions keep their first grade")
	assert.Equal(t, 10, quiz.Summary().Points)

	_, _, err = quiz.Answer("nope", 0, viewed)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	_, _, err = quiz.Answer("d-books", 7, viewed)
	assert.ErrorIs(t, err, ErrAnswerOutOfRange)
	_, first, err = quiz.Answer("d-books", 0, viewed)
	require.NoError(t, err)
	assert.True(t, first, "out-of-range attempts do not lock")
}

func TestQuizScoreIsTenPerCorrect(t *testing.T) {
	store := contenttest.Store()
	quiz := NewQuiz(store, NewEngine(DefaultScoringConfig()), rand.New(rand.NewPCG(8, 8)))
	require.Equal(t, 7, quiz.Len())
	for i, item := range quiz.Items() {
		assert.Equal(t, i >= 2, item.Extra)
	}

	// Nothing viewed: the fallback is correct everywhere. Answer the first four correctly.
	viewed := viewedSet{}
	for i, item := range quiz.Items() {
		selected := 0
		if i < 4 {
			selected = item.Question.FallbackIndex()
		}
		_, _, err := quiz.Answer(item.Question.ID, selected, viewed)
		require.NoError(t, err)
		assert.Equal(t, i == quiz.Len()-1, quiz.Complete())
	}

	sum := quiz.Summary()
	assert.Equal(t, 4, sum.Correct)
	assert.Equal(t, 40, sum.Points)
	assert.Equal(t, 7, sum.Answered)
	assert.InDelta(t, 4.0/7.0, sum.Accuracy, 1e-9)
}
