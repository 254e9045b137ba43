package session

import (
	"math/rand/v2"
	"sort"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
)

// State is the mutable record of one playthrough. It is not safe for concurrent use;
// the owning game serialises access.
type State struct {
	store     *content.Store
	rng       *rand.Rand
	remaining int
	traits    map[string]struct{}
	viewed    map[string]struct{}
	pools     map[string][]*content.Response
	score     int
}

// NewState creates a fresh session with the full time budget and every response pool filled.
func NewState(store *content.Store, budgetSeconds int, rng *rand.Rand) *State {
	s := &State{
		store:     store,
		rng:       rng,
		remaining: budgetSeconds,
		traits:    make(map[string]struct{}),
		viewed:    make(map[string]struct{}),
		pools:     make(map[string][]*content.Response),
	}
	for _, q := range store.Questions() {
		pool := make([]*content.Response, len(q.Responses))
		for i := range q.Responses {
			pool[i] = &q.Responses[i]
		}
		s.pools[q.ID] = pool
	}
	return s
}

// ConsumeTime deducts seconds from the remaining budget. The result may be negative.
func (s *State) ConsumeTime(seconds int) {
	if seconds <= 0 {
		return
	}
	s.remaining -= seconds
}

// Remaining is the raw remaining time in seconds.
func (s *State) Remaining() int { return s.remaining }

// DisplayRemaining clamps the remaining time at zero.
func (s *State) DisplayRemaining() int {
	if s.remaining < 0 {
		return 0
	}
	return s.remaining
}

// Expired reports whether the time budget is used up.
func (s *State) Expired() bool { return s.remaining <= 0 }

// DiscoverTrait records a trait. It returns true only the first time a known trait is discovered.
func (s *State) DiscoverTrait(id string) bool {
	if _, known := s.store.Trait(id); !known {
		return false
	}
	if _, seen := s.traits[id]; seen {
		return false
	}
	s.traits[id] = struct{}{}
	return true
}

// HasDiscovered reports whether the trait has been discovered.
func (s *State) HasDiscovered(id string) bool {
	_, ok := s.traits[id]
	return ok
}

// DiscoveredCount is the number of distinct traits discovered.
func (s *State) DiscoveredCount() int { return len(s.traits) }

// DiscoveredTraits returns the discovered trait ids in sorted order.
func (s *State) DiscoveredTraits() []string {
	ids := make([]string, 0, len(s.traits))
	for id := range s.traits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarkViewed adds a content id to the viewed set.
func (s *State) MarkViewed(id string) {
	if id == "" {
		return
	}
	s.viewed[id] = struct{}{}
}

// HasViewed reports whether a content id was shown.
func (s *State) HasViewed(id string) bool {
	_, ok := s.viewed[id]
	return ok
}

// ViewedAny reports whether at least one of ids was shown.
func (s *State) ViewedAny(ids []string) bool {
	for _, id := range ids {
		if s.HasViewed(id) {
			return true
		}
	}
	return false
}

// ViewedCount is the size of the viewed set.
func (s *State) ViewedCount() int { return len(s.viewed) }

// DrawResponse removes and returns a uniformly random response from the question's pool.
// It returns false when the question is unknown or its pool is exhausted.
func (s *State) DrawResponse(questionID string) (*content.Response, bool) {
	pool := s.pools[questionID]
	if len(pool) == 0 {
		return nil, false
	}
	i := s.rng.IntN(len(pool))
	r := pool[i]
	last := len(pool) - 1
	pool[i] = pool[last]
	pool[last] = nil
	s.pools[questionID] = pool[:last]
	return r, true
}

// PoolSize is the number of responses still available for a question.
func (s *State) PoolSize(questionID string) int { return len(s.pools[questionID]) }

// RecordCorrectAnswer adds points to the synergy score. Non-positive values are ignored.
func (s *State) RecordCorrectAnswer(points int) {
	if points <= 0 {
		return
	}
	s.score += points
}

// Score is the accumulated synergy score.
func (s *State) Score() int { return s.score }

// Rand exposes the session's random source for other draws made during the same playthrough.
func (s *State) Rand() *rand.Rand { return s.rng }
