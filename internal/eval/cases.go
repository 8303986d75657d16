// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/training-factory/pkg/types"
)

// DefaultPhase labels summary rows when the cases file does not.
const DefaultPhase = "phase_b"

// Case is one topic and audience pair to generate a bundle for.
type Case struct {
	ID       string `yaml:"id"`
	Topic    string `yaml:"topic"`
	Audience string `yaml:"audience"`
}

// Mode is one run configuration applied to every case.
type Mode struct {
	ID      string `yaml:"id"`
	Offline bool   `yaml:"offline"`
	Web     bool   `yaml:"web"`
	// SearchProvider is reported as given; names other than fallback and
	// serpapi run against the fallback provider.
	SearchProvider string `yaml:"search_provider"`
}

// pipelineProvider is the provider name handed to the pipeline.
func (m Mode) pipelineProvider() types.SearchProviderName {
	switch p := types.SearchProviderName(m.SearchProvider); p {
	case types.ProviderFallback, types.ProviderSerpAPI:
		return p
	}
	return types.ProviderFallback
}

// Matrix is the on-disk description of an evaluation: every case runs
// under every mode.
type Matrix struct {
	Phase string `yaml:"phase"`
	Cases []Case `yaml:"cases"`
	Modes []Mode `yaml:"modes"`
}

// DefaultMatrix returns the built-in cases C1-C4 and modes M1-M3.
func DefaultMatrix() Matrix {
	return Matrix{
		Phase: DefaultPhase,
		Cases: []Case{
			{ID: "C1", Topic: "Power BI fundamentals", Audience: "novice"},
			{ID: "C2", Topic: "Power Apps basics", Audience: "intermediate"},
			{ID: "C3", Topic: "Enterprise ChatGPT governance and risk controls", Audience: "intermediate"},
			{ID: "C4", Topic: "Power Platform ALM governance best practices", Audience: "intermediate"},
		},
		Modes: []Mode{
			{ID: "M1", Offline: true, Web: false, SearchProvider: "offline"},
			{ID: "M2", Offline: false, Web: true, SearchProvider: "fallback"},
			{ID: "M3", Offline: false, Web: true, SearchProvider: "serpapi"},
		},
	}
}

// ReadMatrix loads a matrix from a YAML file. Missing sections take the
// defaults.
func ReadMatrix(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Matrix{}, eris.Wrap(err, "eval: reading cases file")
	}
	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Matrix{}, eris.Wrap(err, "eval: parsing cases file")
	}

	d := DefaultMatrix()
	if m.Phase == "" {
		m.Phase = d.Phase
	}
	if len(m.Cases) == 0 {
		m.Cases = d.Cases
	}
	if len(m.Modes) == 0 {
		m.Modes = d.Modes
	}
	return m, m.validate()
}

// WriteMatrix saves m as YAML.
func WriteMatrix(path string, m Matrix) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return eris.Wrap(err, "eval: marshaling cases file")
	}
	return eris.Wrap(os.WriteFile(path, data, 0o644), "eval: writing cases file")
}

func (m Matrix) validate() error {
	seen := map[string]bool{}
	for i, c := range m.Cases {
		switch {
		case c.ID == "":
			return eris.Errorf("eval: case %d has no id", i)
		case strings.TrimSpace(c.Topic) == "" || strings.TrimSpace(c.Audience) == "":
			return eris.Errorf("eval: case %s needs topic and audience", c.ID)
		case seen[c.ID]:
			return eris.Errorf("eval: duplicate case id %s", c.ID)
		}
		seen[c.ID] = true
	}
	for i, md := range m.Modes {
		switch {
		case md.ID == "":
			return eris.Errorf("eval: mode %d has no id", i)
		case seen[md.ID]:
			return eris.Errorf("eval: duplicate id %s", md.ID)
		}
		seen[md.ID] = true
	}
	return nil
}

// Select narrows the matrix to the comma-separated case and mode ids. An
// empty selector keeps everything. Matrix order is preserved.
func (m Matrix) Select(caseIDs, modeIDs string) (Matrix, error) {
	cases, err := selectIDs(m.Cases, caseIDs, func(c Case) string { return c.ID }, "case")
	if err != nil {
		return Matrix{}, err
	}
	modes, err := selectIDs(m.Modes, modeIDs, func(md Mode) string { return md.ID }, "mode")
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{Phase: m.Phase, Cases: cases, Modes: modes}, nil
}

func selectIDs[T any](items []T, selector string, id func(T) string, label string) ([]T, error) {
	wanted := map[string]bool{}
	for _, s := range strings.Split(selector, ",") {
		if s = strings.TrimSpace(s); s != "" {
			wanted[s] = true
		}
	}
	if len(wanted) == 0 {
		return items, nil
	}

	var out []T
	for _, it := range items {
		if wanted[id(it)] {
			out = append(out, it)
			delete(wanted, id(it))
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for k := range wanted {
			unknown = append(unknown, k)
		}
		sort.Strings(unknown)
		return nil, eris.Errorf("eval: unknown %s ids: %s", label, strings.Join(unknown, ", "))
	}
	return out, nil
}
