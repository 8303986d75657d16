// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
)

const jsonOnly = "Return JSON only. Do not include markdown fences, labels, or extra prose."

var promptFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"join": strings.Join,
}

var briefPromptTmpl = template.Must(template.New("brief").Funcs(promptFuncs).Parse(jsonOnly + ` Produce a training brief with keys: topic, audience, goals (string array), constraints (string array), references_used (string array), key_guidelines (array of objects with guideline, rationale, sources string array). Every key_guideline.sources must include at least one source id from the allowed list. Do not invent source ids. If evidence is sparse, use the available ids.
Allowed source ids: {{join .IDs ", "}}.
Topic: {{.Topic}}. Audience: {{.Audience}}.
Research context:
{{.ContextPack}}
`))

var curriculumPromptTmpl = template.Must(template.New("curriculum").Funcs(promptFuncs).Parse(jsonOnly + ` Produce a curriculum with keys: topic, audience, references_used (string array), modules (array of objects with title, duration_minutes, objectives string array, sources string array). Every module must cite at least one source id from the allowed list. Prefer authoritative sources (tier A, then B). Do not invent source ids.
Allowed source ids: {{join .IDs ", "}}.
Sources:
{{range .Sources}}- {{.ID}} | tier {{.AuthorityTier}} | {{.Title}}
{{end}}Brief: {{json .Brief}}
`))

var slidesPromptTmpl = template.Must(template.New("slides").Funcs(promptFuncs).Parse(jsonOnly + ` Produce a slide deck with key deck: an array of objects with slide (1-based number), title, and bullets (string array). One slide per curriculum module, then a slide that walks learners through the hands-on lab.
Curriculum: {{json .Curriculum}}
{{if .Failed}}A quality review rejected the previous version. Fix these failed checks:
{{range .Failed}}- {{.Prompt}}
{{end}}{{end}}`))

var structuredLabPromptTmpl = template.Must(template.New("lab").Funcs(promptFuncs).Parse(jsonOnly + ` Produce a lab with keys title, objective, prerequisites, setup, steps, and checkpoints. steps must contain numbered instructional objects (step, instruction, optional expected_output) and checkpoints must contain validation criteria. Provide at least 3 steps.
Curriculum: {{json .Curriculum}}
Slides: {{json .Slides}}
`))

var legacyLabPromptTmpl = template.Must(template.New("lab").Funcs(promptFuncs).Parse(jsonOnly + ` Produce lab activities with key labs. Each lab must include title, instructions (string array), and expected_outcome.
Curriculum: {{json .Curriculum}}
Slides: {{json .Slides}}
`))

var structuredTemplatesPromptTmpl = template.Must(template.New("templates").Funcs(promptFuncs).Parse(jsonOnly + ` Produce templates with keys readme_md and runbook_md. Each key must contain an object with filename and content. Filenames must be README.md and RUNBOOK.md. Both documents together must mention the slides and the lab.
Slides: {{json .Slides}}
Lab: {{json .Lab}}
`))

var legacyTemplatesPromptTmpl = template.Must(template.New("templates").Funcs(promptFuncs).Parse(jsonOnly + ` Produce templates with keys README.md and RUNBOOK.md (both non-empty markdown strings). Both documents together must mention the slides and the lab.
Slides: {{json .Slides}}
Lab: {{json .Lab}}
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", eris.Wrapf(err, "generate: rendering %s prompt", t.Name())
	}
	return buf.String(), nil
}
