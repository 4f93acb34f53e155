package service

import (
	"fmt"

	"demosim/internal/model"
)

// PersonaCatalog is the static set of synthetic participant profiles.
// Pure lookup, no side effects; entries are never mutated after construction.
type PersonaCatalog struct {
	personas map[string]*model.Persona
	order    []string
}

// NewPersonaCatalog creates the catalog with the three built-in archetypes
func NewPersonaCatalog() *PersonaCatalog {
	c := &PersonaCatalog{
		personas: make(map[string]*model.Persona),
	}
	for _, p := range builtinPersonas() {
		c.personas[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

// Get returns the persona with the given ID, or ErrPersonaNotFound
func (c *PersonaCatalog) Get(id string) (*model.Persona, error) {
	p, ok := c.personas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}
	return p, nil
}

// All returns every persona in catalog order
func (c *PersonaCatalog) All() []*model.Persona {
	out := make([]*model.Persona, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.personas[id])
	}
	return out
}

func builtinPersonas() []*model.Persona {
	return []*model.Persona{
		{
			ID:          model.PersonaIdeal,
			Name:        "Maya (Ideal Participant)",
			Description: "Engaged, articulate, stays on topic and gives rich answers",
			Traits:      []string{"thoughtful", "detail-oriented", "enthusiastic", "patient"},
			Behavior: model.BehaviorModel{
				Comprehension:           model.ComprehensionHigh,
				Cooperativeness:         95,
				TangentRate:             0.1,
				FatigueRate:             0.3,
				FrustrationThreshold:    80,
				ClarificationLikelihood: 0.05,
			},
			Patterns: model.ResponsePatterns{
				AverageWordCount: 80,
				DetailLevel:      model.DetailHigh,
				ResponseTimeSec:  4,
			},
		},
		{
			ID:          model.PersonaTypical,
			Name:        "Jordan (Typical Participant)",
			Description: "Cooperative but distractible, answers adequately with occasional tangents",
			Traits:      []string{"friendly", "busy", "easily distracted", "pragmatic"},
			Behavior: model.BehaviorModel{
				Comprehension:           model.ComprehensionMedium,
				Cooperativeness:         75,
				TangentRate:             0.35,
				FatigueRate:             0.8,
				FrustrationThreshold:    60,
				ClarificationLikelihood: 0.25,
			},
			Patterns: model.ResponsePatterns{
				AverageWordCount: 45,
				DetailLevel:      model.DetailMedium,
				ResponseTimeSec:  6,
			},
		},
		{
			ID:          model.PersonaDifficult,
			Name:        "Sam (Difficult Participant)",
			Description: "Terse, skeptical, prone to tangents, frustration, and early exits",
			Traits:      []string{"impatient", "skeptical", "blunt", "distracted"},
			Behavior: model.BehaviorModel{
				Comprehension:           model.ComprehensionLow,
				Cooperativeness:         50,
				TangentRate:             0.6,
				FatigueRate:             1.6,
				FrustrationThreshold:    40,
				ClarificationLikelihood: 0.4,
			},
			Patterns: model.ResponsePatterns{
				AverageWordCount: 20,
				DetailLevel:      model.DetailLow,
				ResponseTimeSec:  8,
			},
		},
	}
}
