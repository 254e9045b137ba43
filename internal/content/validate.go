package content

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument wraps every validation failure reported by Validate.
var ErrInvalidDocument = errors.New("invalid content document")

// Validate checks structural integrity of a document. All issues are reported together.
func Validate(doc Document) error {
	v := validator{
		ids:      make(map[string]string),
		traits:   make(map[string]struct{}, len(doc.Traits)),
		viewable: make(map[string]struct{}),
	}

	for i, t := range doc.Traits {
		if t.ID == "" {
			v.failf("traits[%d]: missing id", i)
			continue
		}
		if _, dup := v.traits[t.ID]; dup {
			v.failf("traits[%d]: duplicate trait id %q", i, t.ID)
		}
		v.traits[t.ID] = struct{}{}
	}

	if len(doc.IntroQuestions) == 0 {
		v.failf("intro_questions: at least one question is required")
	}
	for i, q := range doc.IntroQuestions {
		where := fmt.Sprintf("intro_questions[%d]", i)
		v.claim(where, q.ID)
		if len(q.Responses) == 0 {
			v.failf("%s: question %q has no responses", where, q.ID)
		}
		for j, r := range q.Responses {
			v.response(fmt.Sprintf("%s.responses[%d]", where, j), r)
		}
	}

	for i, q := range doc.DebriefQuestions {
		v.debrief(fmt.Sprintf("debrief_questions[%d]", i), q)
	}
	for i, q := range doc.ExtraDebriefPool {
		v.debrief(fmt.Sprintf("extra_debrief_pool[%d]", i), q)
	}

	if len(v.issues) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(v.issues...))
	}
	return nil
}

type validator struct {
	ids      map[string]string // id -> first location
	traits   map[string]struct{}
	viewable map[string]struct{} // response and follow-up ids
	issues   []error
}

func (v *validator) failf(format string, args ...any) {
	v.issues = append(v.issues, fmt.Errorf(format, args...))
}

func (v *validator) claim(where, id string) {
	if id == "" {
		v.failf("%s: missing id", where)
		return
	}
	if first, dup := v.ids[id]; dup {
		v.failf("%s: id %q already used at %s", where, id, first)
		return
	}
	v.ids[id] = where
}

func (v *validator) response(where string, r Response) {
	v.claim(where, r.ID)
	v.viewable[r.ID] = struct{}{}
	if r.TimeCost < 0 {
		v.failf("%s: negative time_cost %v", where, r.TimeCost)
	}
	if r.Trait != "" {
		if _, ok := v.traits[r.Trait]; !ok {
			v.failf("%s: unknown trait %q", where, r.Trait)
		}
	}
	for i, f := range r.FollowUps {
		v.response(fmt.Sprintf("%s.follow_ups[%d]", where, i), f)
	}
}

func (v *validator) debrief(where string, q DebriefQuestion) {
	v.claim(where, q.ID)
	if len(q.Answers) == 0 {
		v.failf("%s: no answers", where)
		return
	}
	if q.Correct < 0 || q.Correct >= len(q.Answers) {
		v.failf("%s: correct index %d out of range [0,%d)", where, q.Correct, len(q.Answers))
	}
	for _, id := range q.Requires {
		if _, ok := v.viewable[id]; !ok {
			v.failf("%s: requires unknown content %q", where, id)
		}
	}
}
