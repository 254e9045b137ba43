package content

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a content document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName picks a format from a file name or URL path, defaulting to JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses raw bytes into a Document without validating it.
func Decode(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported content format %q", format)
	}
	return doc, nil
}

// Store is the read-only, indexed view of a validated document.
// Nothing handed out by a Store may be modified by callers.
type Store struct {
	doc       Document
	traits    map[string]Trait
	questions map[string]*Question
}

// NewStore validates doc and indexes it.
func NewStore(doc Document) (*Store, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	s := &Store{
		doc:       doc,
		traits:    make(map[string]Trait, len(doc.Traits)),
		questions: make(map[string]*Question, len(doc.IntroQuestions)),
	}
	for _, t := range doc.Traits {
		s.traits[t.ID] = t
	}
	for i := range doc.IntroQuestions {
		q := &s.doc.IntroQuestions[i]
		s.questions[q.ID] = q
	}
	return s, nil
}

// Traits returns all traits in document order.
func (s *Store) Traits() []Trait { return s.doc.Traits }

// TraitCount is the total number of traits that can be discovered.
func (s *Store) TraitCount() int { return len(s.doc.Traits) }

// Trait looks up a trait by id.
func (s *Store) Trait(id string) (Trait, bool) {
	t, ok := s.traits[id]
	return t, ok
}

// Questions returns the intro questions in document order.
func (s *Store) Questions() []Question { return s.doc.IntroQuestions }

// Question looks up an intro question by id.
func (s *Store) Question(id string) (*Question, bool) {
	q, ok := s.questions[id]
	return q, ok
}

// CoreDebrief returns the debrief questions asked in every session.
func (s *Store) CoreDebrief() []DebriefQuestion { return s.doc.DebriefQuestions }

// ExtraDebrief returns the pool sampled for additional debrief questions.
func (s *Store) ExtraDebrief() []DebriefQuestion { return s.doc.ExtraDebriefPool }

// Summary is a public, answer-free overview of the loaded content.
type Summary struct {
	Traits        []Trait `json:"traits" yaml:"traits"`
	QuestionCount int     `json:"question_count" yaml:"question_count"`
	ResponseCount int     `json:"response_count" yaml:"response_count"`
	CoreDebrief   int     `json:"core_debrief" yaml:"core_debrief"`
	ExtraDebrief  int     `json:"extra_debrief" yaml:"extra_debrief"`
}

// Summary describes the store for status endpoints and tooling.
func (s *Store) Summary() Summary {
	responses := 0
	for _, q := range s.doc.IntroQuestions {
		responses += len(q.Responses)
	}
	return Summary{
		Traits:        s.doc.Traits,
		QuestionCount: len(s.doc.IntroQuestions),
		ResponseCount: responses,
		CoreDebrief:   len(s.doc.DebriefQuestions),
		ExtraDebrief:  len(s.doc.ExtraDebriefPool),
	}
}
