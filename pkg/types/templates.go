// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Required template filenames.
const (
	ReadmeFilename  = "README.md"
	RunbookFilename = "RUNBOOK.md"
)

// TemplateDoc is one named markdown document.
type TemplateDoc struct {
	Filename string `json:"filename" yaml:"filename"`
	Content  string `json:"content" yaml:"content"`
}

// StructuredTemplates carries each document with its filename.
type StructuredTemplates struct {
	ReadmeMD  TemplateDoc `json:"readme_md" yaml:"readme_md"`
	RunbookMD TemplateDoc `json:"runbook_md" yaml:"runbook_md"`
}

// LegacyTemplates keys document content by filename.
type LegacyTemplates struct {
	Readme  string `json:"README.md" yaml:"README.md"`
	Runbook string `json:"RUNBOOK.md" yaml:"RUNBOOK.md"`
}

// ToLegacy drops the filenames.
func (t StructuredTemplates) ToLegacy() LegacyTemplates {
	return LegacyTemplates{Readme: t.ReadmeMD.Content, Runbook: t.RunbookMD.Content}
}

// ToStructured attaches the required filenames.
func (t LegacyTemplates) ToStructured() StructuredTemplates {
	return StructuredTemplates{
		ReadmeMD:  TemplateDoc{Filename: ReadmeFilename, Content: t.Readme},
		RunbookMD: TemplateDoc{Filename: RunbookFilename, Content: t.Runbook},
	}
}

// Templates holds exactly one of the two template layouts, tagged by Shape.
type Templates struct {
	Shape      Shape
	Structured *StructuredTemplates
	Legacy     *LegacyTemplates
}

// NewStructuredTemplates wraps structured templates.
func NewStructuredTemplates(t StructuredTemplates) Templates {
	return Templates{Shape: ShapeStructured, Structured: &t}
}

// NewLegacyTemplates wraps legacy templates.
func NewLegacyTemplates(t LegacyTemplates) Templates {
	return Templates{Shape: ShapeLegacy, Legacy: &t}
}

// As returns the templates converted to the requested shape.
func (t Templates) As(shape Shape) Templates {
	switch {
	case shape == ShapeLegacy && t.Structured != nil:
		return NewLegacyTemplates(t.Structured.ToLegacy())
	case shape == ShapeStructured && t.Legacy != nil:
		return NewStructuredTemplates(t.Legacy.ToStructured())
	}
	return t
}

// Readme returns the README content regardless of layout.
func (t Templates) Readme() string {
	switch {
	case t.Structured != nil:
		return t.Structured.ReadmeMD.Content
	case t.Legacy != nil:
		return t.Legacy.Readme
	}
	return ""
}

// Runbook returns the RUNBOOK content regardless of layout.
func (t Templates) Runbook() string {
	switch {
	case t.Structured != nil:
		return t.Structured.RunbookMD.Content
	case t.Legacy != nil:
		return t.Legacy.Runbook
	}
	return ""
}

// MarshalJSON encodes only the active layout.
func (t Templates) MarshalJSON() ([]byte, error) {
	switch {
	case t.Shape == ShapeLegacy && t.Legacy != nil:
		return json.Marshal(t.Legacy)
	case t.Structured != nil:
		return json.Marshal(t.Structured)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes persisted templates. A top-level "README.md" or
// "RUNBOOK.md" key marks the legacy layout.
func (t *Templates) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	_, readme := probe[ReadmeFilename]
	_, runbook := probe[RunbookFilename]
	if readme || runbook {
		var legacy LegacyTemplates
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*t = NewLegacyTemplates(legacy)
		return nil
	}
	var structured StructuredTemplates
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*t = NewStructuredTemplates(structured)
	return nil
}

// MarshalYAML encodes only the active layout.
func (t Templates) MarshalYAML() (any, error) {
	if t.Shape == ShapeLegacy && t.Legacy != nil {
		return t.Legacy, nil
	}
	return t.Structured, nil
}
