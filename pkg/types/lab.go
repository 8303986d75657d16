// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// Shape selects which of two payload layouts the lab and templates stages
// emit. It is fixed by configuration before a run starts.
type Shape string

const (
	ShapeStructured Shape = "structured"
	ShapeLegacy     Shape = "legacy"
)

// ParseShape maps a configuration value to a Shape. Empty means structured.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case "", ShapeStructured:
		return ShapeStructured, nil
	case ShapeLegacy:
		return ShapeLegacy, nil
	}
	return "", fmt.Errorf("unknown payload shape %q (want structured or legacy)", s)
}

// LabStep is one numbered instruction of a structured lab.
type LabStep struct {
	Step           int    `json:"step" yaml:"step"`
	Instruction    string `json:"instruction" yaml:"instruction"`
	ExpectedOutput string `json:"expected_output,omitempty" yaml:"expected_output,omitempty"`
}

// StructuredLab is a single lab with setup, steps, and checkpoints.
type StructuredLab struct {
	Title         string    `json:"title" yaml:"title"`
	Objective     string    `json:"objective" yaml:"objective"`
	Prerequisites []string  `json:"prerequisites" yaml:"prerequisites"`
	Setup         []string  `json:"setup" yaml:"setup"`
	Steps         []LabStep `json:"steps" yaml:"steps"`
	Checkpoints   []string  `json:"checkpoints" yaml:"checkpoints"`
}

// LegacyActivity is one lab activity in the legacy layout.
type LegacyActivity struct {
	Title           string   `json:"title" yaml:"title"`
	Instructions    []string `json:"instructions" yaml:"instructions"`
	ExpectedOutcome string   `json:"expected_outcome" yaml:"expected_outcome"`
}

// LegacyLab is a list of lab activities.
type LegacyLab struct {
	Labs []LegacyActivity `json:"labs" yaml:"labs"`
}

// MinLabSteps is the minimum number of steps in a structured lab.
const MinLabSteps = 3

// ToLegacy converts a structured lab into a single legacy activity.
func (l StructuredLab) ToLegacy() LegacyLab {
	var instructions []string
	for _, s := range l.Steps {
		if s.Instruction != "" {
			instructions = append(instructions, s.Instruction)
		}
	}
	if len(instructions) == 0 {
		instructions = []string{"Complete the lab steps"}
	}
	title := l.Title
	if title == "" {
		title = "Lab"
	}
	outcome := l.Objective
	if outcome == "" {
		outcome = "Learner can complete the lab objective"
	}
	return LegacyLab{Labs: []LegacyActivity{{
		Title:           title,
		Instructions:    instructions,
		ExpectedOutcome: outcome,
	}}}
}

// ToStructured converts the first legacy activity into a structured lab.
// Missing fields are taken from fallback and steps are padded to MinLabSteps.
func (l LegacyLab) ToStructured(fallback StructuredLab) StructuredLab {
	if len(l.Labs) == 0 {
		return fallback
	}
	first := l.Labs[0]

	var steps []LabStep
	for _, in := range first.Instructions {
		if in != "" {
			steps = append(steps, LabStep{Step: len(steps) + 1, Instruction: in})
		}
	}
	steps = PadSteps(steps)

	title := first.Title
	if title == "" {
		title = fallback.Title
	}
	objective := first.ExpectedOutcome
	outcome := first.ExpectedOutcome
	if objective == "" {
		objective = fallback.Objective
		outcome = "Lab objective met"
	}
	return StructuredLab{
		Title:         title,
		Objective:     objective,
		Prerequisites: fallback.Prerequisites,
		Setup:         fallback.Setup,
		Steps:         steps,
		Checkpoints:   []string{outcome, "Lab output reviewed"},
	}
}

// PadSteps appends placeholder steps until there are MinLabSteps.
func PadSteps(steps []LabStep) []LabStep {
	for len(steps) < MinLabSteps {
		n := len(steps) + 1
		steps = append(steps, LabStep{Step: n, Instruction: fmt.Sprintf("Complete remaining task %d", n)})
	}
	return steps
}

// Lab holds exactly one of the two lab layouts, tagged by Shape.
type Lab struct {
	Shape      Shape
	Structured *StructuredLab
	Legacy     *LegacyLab
}

// NewStructuredLab wraps a structured lab.
func NewStructuredLab(l StructuredLab) Lab {
	return Lab{Shape: ShapeStructured, Structured: &l}
}

// NewLegacyLab wraps a legacy lab.
func NewLegacyLab(l LegacyLab) Lab {
	return Lab{Shape: ShapeLegacy, Legacy: &l}
}

// As returns the lab converted to the requested shape.
func (l Lab) As(shape Shape, fallback StructuredLab) Lab {
	switch {
	case shape == ShapeLegacy && l.Structured != nil:
		return NewLegacyLab(l.Structured.ToLegacy())
	case shape == ShapeStructured && l.Legacy != nil:
		return NewStructuredLab(l.Legacy.ToStructured(fallback))
	}
	return l
}

// StepTexts returns every instruction regardless of layout.
func (l Lab) StepTexts() []string {
	var out []string
	switch {
	case l.Structured != nil:
		for _, s := range l.Structured.Steps {
			out = append(out, s.Instruction)
		}
	case l.Legacy != nil:
		for _, a := range l.Legacy.Labs {
			out = append(out, a.Instructions...)
		}
	}
	return out
}

// CheckpointTexts returns the lab's validation criteria. Legacy labs use
// each activity's expected outcome.
func (l Lab) CheckpointTexts() []string {
	var out []string
	switch {
	case l.Structured != nil:
		out = append(out, l.Structured.Checkpoints...)
	case l.Legacy != nil:
		for _, a := range l.Legacy.Labs {
			if a.ExpectedOutcome != "" {
				out = append(out, a.ExpectedOutcome)
			}
		}
	}
	return out
}

// MarshalJSON encodes only the active layout.
func (l Lab) MarshalJSON() ([]byte, error) {
	switch {
	case l.Shape == ShapeLegacy && l.Legacy != nil:
		return json.Marshal(l.Legacy)
	case l.Structured != nil:
		return json.Marshal(l.Structured)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a persisted lab. A top-level "labs" key marks the
// legacy layout.
func (l *Lab) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["labs"]; ok {
		var legacy LegacyLab
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*l = NewLegacyLab(legacy)
		return nil
	}
	var structured StructuredLab
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*l = NewStructuredLab(structured)
	return nil
}

// MarshalYAML encodes only the active layout.
func (l Lab) MarshalYAML() (any, error) {
	if l.Shape == ShapeLegacy && l.Legacy != nil {
		return l.Legacy, nil
	}
	return l.Structured, nil
}
