// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Guideline is one grounded recommendation in a brief.
type Guideline struct {
	Guideline string   `json:"guideline" yaml:"guideline"`
	Rationale string   `json:"rationale" yaml:"rationale"`
	Sources   []string `json:"sources" yaml:"sources"`
}

// Brief frames the training for a topic and audience.
type Brief struct {
	Topic          string      `json:"topic" yaml:"topic"`
	Audience       string      `json:"audience" yaml:"audience"`
	Goals          []string    `json:"goals" yaml:"goals"`
	Constraints    []string    `json:"constraints" yaml:"constraints"`
	ReferencesUsed []string    `json:"references_used" yaml:"references_used"`
	KeyGuidelines  []Guideline `json:"key_guidelines" yaml:"key_guidelines"`
}

// Module is one unit of the curriculum. Sources cite research ids.
type Module struct {
	Title           string   `json:"title" yaml:"title"`
	DurationMinutes int      `json:"duration_minutes" yaml:"duration_minutes"`
	Objectives      []string `json:"objectives" yaml:"objectives"`
	Sources         []string `json:"sources" yaml:"sources"`
}

// Curriculum is the ordered module plan for the training.
type Curriculum struct {
	Topic          string   `json:"topic" yaml:"topic"`
	Audience       string   `json:"audience" yaml:"audience"`
	ReferencesUsed []string `json:"references_used" yaml:"references_used"`
	Modules        []Module `json:"modules" yaml:"modules"`
}

// Slide is one entry in a deck. Number is 1-based.
type Slide struct {
	Number  int      `json:"slide" yaml:"slide"`
	Title   string   `json:"title" yaml:"title"`
	Bullets []string `json:"bullets" yaml:"bullets"`
}

// Slides is the presentation deck.
type Slides struct {
	Deck []Slide `json:"deck" yaml:"deck"`
}
