package roundtwo

import (
	"errors"
	"math/rand/v2"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
)

var (
	ErrUnknownQuestion  = errors.New("unknown debrief question")
	ErrAnswerOutOfRange = errors.New("answer index out of range")
)

// Assemble returns every core question in order followed by n extras.
// The extras are the first n of a uniform permutation of the pool; a smaller pool is used whole.
func Assemble(core, extra []content.DebriefQuestion, rng *rand.Rand, n int) []content.DebriefQuestion {
	out := make([]content.DebriefQuestion, 0, len(core)+n)
	out = append(out, core...)

	perm := make([]int, len(extra))
	for i := range perm {
		perm[i] = i
	}
	// Fisher-Yates.
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	if n > len(perm) {
		n = len(perm)
	}
	for _, idx := range perm[:n] {
		out = append(out, extra[idx])
	}
	return out
}

// Item is one question in an assembled quiz together with its lock state.
type Item struct {
	Question content.DebriefQuestion
	Extra    bool
	Locked   bool
	Grade    Grade
}

// Quiz is the Round Two question set. Each question accepts exactly one answer.
type Quiz struct {
	engine   *Engine
	items    []Item
	index    map[string]int
	answered []Grade
}

// NewQuiz assembles a quiz from the store's debrief content.
func NewQuiz(store *content.Store, engine *Engine, rng *rand.Rand) *Quiz {
	core := store.CoreDebrief()
	questions := Assemble(core, store.ExtraDebrief(), rng, engine.Config().ExtraCount)

	q := &Quiz{
		engine: engine,
		items:  make([]Item, len(questions)),
		index:  make(map[string]int, len(questions)),
	}
	for i, dq := range questions {
		q.items[i] = Item{Question: dq, Extra: i >= len(core)}
		q.index[dq.ID] = i
	}
	return q
}

// Answer grades the first answer to a question and locks it.
// Later answers return the locked grade with first set to false.
func (q *Quiz) Answer(id string, selected int, viewed Viewed) (g Grade, first bool, err error) {
	i, ok := q.index[id]
	if !ok {
		return Grade{}, false, ErrUnknownQuestion
	}
	item := &q.items[i]
	if item.Locked {
		return item.Grade, false, nil
	}
	if selected < 0 || selected >= len(item.Question.Answers) {
		return Grade{}, false, ErrAnswerOutOfRange
	}

	item.Grade = q.engine.Grade(item.Question, selected, viewed)
	item.Locked = true
	q.answered = append(q.answered, item.Grade)
	return item.Grade, true, nil
}

// Items returns the quiz in presentation order.
func (q *Quiz) Items() []Item { return q.items }

// Len is the number of questions.
func (q *Quiz) Len() int { return len(q.items) }

// Complete reports whether every question has been answered.
func (q *Quiz) Complete() bool { return len(q.answered) == len(q.items) }

// Summary totals the answers given so far.
func (q *Quiz) Summary() Summary { return Summarize(q.answered, len(q.items)) }
