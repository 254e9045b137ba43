package roundone

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
	"github.com/gokatarajesh/synergy-debrief/internal/content/contenttest"
	"github.com/gokatarajesh/synergy-debrief/internal/session"
)

func newEngine(t *testing.T, store *content.Store, budget int, seed uint64) (*Engine, *session.State) {
	t.Helper()
	state := session.NewState(store, budget, rand.New(rand.NewPCG(seed, 7)))
	return NewEngine(store, state, 0), state
}

// drawUntil selects q-weekend until the wanted response comes up, leaving any topic it opens on the way.
func drawUntil(t *testing.T, e *Engine, want string) Result {
	t.Helper()
	for i := 0; i < 3; i++ {
		res, err := e.SelectQuestion("q-weekend")
		require.NoError(t, err)
		require.NotNil(t, res.Response)
		if res.Response.ID == want {
			return res
		}
		if e.TopicOpen() {
			_, err := e.ChangeTopic()
			require.NoError(t, err)
		}
	}
	t.Fatalf("response %s never drawn", want)
	return Result{}
}

func TestSelectQuestionDrawsMarksAndCharges(t *testing.T) {
	store := contenttest.Store()
	e, state := newEngine(t, store, 1200, 1)

	res := drawUntil(t, e, "r-hike")
	assert.Equal(t, "q-weekend", res.QuestionID)
	assert.Equal(t, 60, res.CostSeconds)
	assert.Equal(t, "steady", res.NewTrait)
	assert.True(t, res.Intense)
	assert.True(t, state.HasViewed("r-hike"))
	assert.True(t, state.HasDiscovered("steady"))
	assert.False(t, e.TopicOpen(), "no follow-ups means back to the question list")
	assert.Same(t, res.Response, e.Current())
}

func TestExhaustedQuestionIsNoOp(t *testing.T) {
	store := contenttest.Store()
	e, state := newEngine(t, store, 1200, 3)

	for i := 0; i < 3; i++ {
		res, err := e.SelectQuestion("q-weekend")
		require.NoError(t, err)
		require.NotNil(t, res.Response)
		if e.TopicOpen() {
			_, err = e.ChangeTopic()
			require.NoError(t, err)
		}
	}
	assert.False(t, e.QuestionEnabled("q-weekend"))

	remaining := state.Remaining()
	viewed := state.ViewedCount()
	res, err := e.SelectQuestion("q-weekend")
	require.NoError(t, err)
	assert.Nil(t, res.Response)
	assert.Equal(t, remaining, state.Remaining())
	assert.Equal(t, viewed, state.ViewedCount())
}

func TestUnknownQuestion(t *testing.T) {
	e, _ := newEngine(t, contenttest.Store(), 1200, 1)
	_, err := e.SelectQuestion("q-missing")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestFollowUpChain(t *testing.T) {
	store := contenttest.Store()
	e, state := newEngine(t, store, 1200, 11)

	drawUntil(t, e, "r-books")
	assert.True(t, e.TopicOpen())
	require.Len(t, e.Offered(), 2)

	_, err := e.SelectQuestion("q-role")
	assert.ErrorIs(t, err, ErrTopicOpen)

	_, err = e.SelectFollowUp("f-why")
	assert.ErrorIs(t, err, ErrUnknownFollowUp, "nested follow-ups are not offered yet")

	before := state.Remaining()
	res, err := e.SelectFollowUp("f-which")
	require.NoError(t, err)
	assert.Equal(t, "f-which", res.Response.ID)
	assert.Equal(t, before-60, state.Remaining())
	assert.Empty(t, res.NewTrait)
	assert.False(t, res.Intense)
	require.Len(t, e.Offered(), 1)
	assert.Equal(t, "f-why", e.Offered()[0].ID)

	res, err = e.SelectFollowUp("f-why")
	require.NoError(t, err)
	assert.Equal(t, 30, res.CostSeconds)
	assert.True(t, state.HasViewed("f-why"))
	assert.False(t, e.TopicOpen())
}

func TestIntenseOnlyForUndiscoveredTrait(t *testing.T) {
	store := contenttest.Store()
	e, state := newEngine(t, store, 1200, 5)
	state.DiscoverTrait("steady")

	res := drawUntil(t, e, "r-hike")
	assert.False(t, res.Intense)
	assert.Empty(t, res.NewTrait)
	assert.True(t, state.HasDiscovered("steady"))
}

func TestChangeTopic(t *testing.T) {
	store := contenttest.Store()
	e, state := newEngine(t, store, 1200, 2)

	_, err := e.ChangeTopic()
	assert.ErrorIs(t, err, ErrNoTopicOpen)

	drawUntil(t, e, "r-books")
	before := state.Remaining()
	viewed := state.ViewedCount()

	res, err := e.ChangeTopic()
	require.NoError(t, err)
	assert.Equal(t, 60, res.CostSeconds)
	assert.Equal(t, before-60, state.Remaining())
	assert.Equal(t, viewed, state.ViewedCount(), "changing topic marks nothing viewed")
	assert.False(t, e.TopicOpen())
	assert.Nil(t, e.Current())
}

func TestCostEndsRoundImmediately(t *testing.T) {
	doc := contenttest.Document()
	doc.IntroQuestions[1].Responses[0].TimeCost = 2
	store, err := content.NewStore(doc)
	require.NoError(t, err)

	e, state := newEngine(t, store, 65, 1)
	res, err := e.SelectQuestion("q-role")
	require.NoError(t, err)

	assert.Equal(t, -55, state.Remaining())
	assert.Equal(t, 0, state.DisplayRemaining())
	assert.True(t, res.Ended)
	assert.True(t, e.Ended())

	_, err = e.SelectQuestion("q-weekend")
	assert.ErrorIs(t, err, ErrRoundOver)
	_, err = e.ChangeTopic()
	assert.ErrorIs(t, err, ErrRoundOver)
}

func TestTickEndsRoundAtZero(t *testing.T) {
	e, state := newEngine(t, contenttest.Store(), 3, 1)
	assert.False(t, e.Tick())
	assert.False(t, e.Tick())
	assert.True(t, e.Tick())
	assert.Equal(t, 0, state.Remaining())

	assert.True(t, e.Tick(), "ticks after the end change nothing")
	assert.Equal(t, 0, state.Remaining())
}
