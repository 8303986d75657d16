// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Bundle is the terminal snapshot of a pipeline run. Its JSON form is the
// persisted artifact.
type Bundle struct {
	Request    Request          `json:"request" yaml:"request"`
	Research   ResearchResult   `json:"research" yaml:"research"`
	ResearchQA ResearchQAResult `json:"research_qa" yaml:"research_qa"`
	Brief      Brief            `json:"brief" yaml:"brief"`
	Curriculum Curriculum       `json:"curriculum" yaml:"curriculum"`
	Lab        Lab              `json:"lab" yaml:"lab"`
	Slides     Slides           `json:"slides" yaml:"slides"`
	Templates  Templates        `json:"templates" yaml:"templates"`
	QA         QAResult         `json:"qa" yaml:"qa"`
}
