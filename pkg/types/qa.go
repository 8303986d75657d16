// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QAStatus is the outcome of a quality gate.
type QAStatus string

const (
	StatusPass QAStatus = "pass"
	StatusFail QAStatus = "fail"
)

// Answer is a single check verdict.
type Answer string

const (
	AnswerYes Answer = "Yes"
	AnswerNo  Answer = "No"
)

// AnswerOf converts a predicate result into an Answer.
func AnswerOf(ok bool) Answer {
	if ok {
		return AnswerYes
	}
	return AnswerNo
}

// Check is one named gate predicate and its verdict.
type Check struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Answer Answer `json:"answer" yaml:"answer"`
}

// StatusOf returns pass when every check answered Yes.
func StatusOf(checks []Check) QAStatus {
	for _, c := range checks {
		if c.Answer != AnswerYes {
			return StatusFail
		}
	}
	return StatusPass
}

// ResearchMetrics summarizes the selected source list.
type ResearchMetrics struct {
	TierCounts           map[Tier]int   `json:"tier_counts" yaml:"tier_counts"`
	DomainCounts         map[string]int `json:"domain_counts" yaml:"domain_counts"`
	KeywordCoverageRatio float64        `json:"keyword_coverage_ratio" yaml:"keyword_coverage_ratio"`
}

// ResearchQAResult is the research gate outcome.
type ResearchQAResult struct {
	Status  QAStatus        `json:"status" yaml:"status"`
	Checks  []Check         `json:"checks" yaml:"checks"`
	Metrics ResearchMetrics `json:"metrics" yaml:"metrics"`
}

// QAResult is the content gate outcome.
type QAResult struct {
	Status QAStatus `json:"status" yaml:"status"`
	Checks []Check  `json:"checks" yaml:"checks"`
}

// Failed returns the checks that answered No.
func (q QAResult) Failed() []Check {
	var out []Check
	for _, c := range q.Checks {
		if c.Answer != AnswerYes {
			out = append(out, c)
		}
	}
	return out
}

// Answer returns the verdict for the check with the given prompt.
func (q QAResult) Answer(prompt string) (Answer, bool) {
	for _, c := range q.Checks {
		if c.Prompt == prompt {
			return c.Answer, true
		}
	}
	return "", false
}
