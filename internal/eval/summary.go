// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/training-factory/internal/gate"
	"github.com/pdiddy/training-factory/pkg/types"
)

// Columns is the summary CSV header, in order.
var Columns = []string{
	"phase",
	"case_id",
	"mode_id",
	"topic",
	"audience",
	"web",
	"search_provider",
	"research_revision_count",
	"research_qa_status",
	"keyword_coverage_ratio",
	"tier_A_count",
	"tier_B_count",
	"tier_C_count",
	"tier_D_count",
	"unique_domains",
	"top_domain",
	"curriculum_modules_count",
	"brief_guidelines_count",
	"qa_status",
	"qa_authority_check",
	"qa_citation_validity_check",
	"notes",
}

// Row is one summary line: a case run under a mode.
type Row struct {
	Phase                string
	CaseID               string
	ModeID               string
	Topic                string
	Audience             string
	Web                  bool
	SearchProvider       string
	ResearchRevisions    int
	ResearchQAStatus     types.QAStatus
	KeywordCoverageRatio float64
	TierCounts           map[types.Tier]int
	UniqueDomains        int
	TopDomain            string
	CurriculumModules    int
	BriefGuidelines      int
	QAStatus             types.QAStatus
	QAAuthorityCheck     types.Answer
	QACitationValidity   types.Answer
	Notes                string
	BundlePath           string
}

// summarize fills the metrics columns from an assembled bundle.
func summarize(row Row, b types.Bundle, researchRevisions int) Row {
	row.ResearchRevisions = researchRevisions
	row.ResearchQAStatus = b.ResearchQA.Status
	row.KeywordCoverageRatio = b.ResearchQA.Metrics.KeywordCoverageRatio
	row.TierCounts = map[types.Tier]int{}
	for _, s := range b.Research.Sources {
		row.TierCounts[s.AuthorityTier]++
	}
	row.UniqueDomains, row.TopDomain = domainStats(b.Research.Sources)
	row.CurriculumModules = len(b.Curriculum.Modules)
	row.BriefGuidelines = len(b.Brief.KeyGuidelines)
	row.QAStatus = b.QA.Status
	row.QAAuthorityCheck, _ = b.QA.Answer(gate.CheckAuthorityCitations)
	row.QACitationValidity, _ = b.QA.Answer(gate.CheckReferencesValid)
	return row
}

// domainStats counts distinct domains and picks the most frequent one,
// breaking ties alphabetically.
func domainStats(sources []types.Source) (int, string) {
	counts := map[string]int{}
	for _, s := range sources {
		if s.Domain != "" {
			counts[s.Domain]++
		}
	}
	if len(counts) == 0 {
		return 0, ""
	}
	domains := make([]string, 0, len(counts))
	for d := range counts {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if counts[domains[i]] != counts[domains[j]] {
			return counts[domains[i]] > counts[domains[j]]
		}
		return domains[i] < domains[j]
	})
	return len(counts), domains[0]
}

// Record renders the row in Columns order.
func (r Row) Record() []string {
	return []string{
		r.Phase,
		r.CaseID,
		r.ModeID,
		r.Topic,
		r.Audience,
		strconv.FormatBool(r.Web),
		r.SearchProvider,
		strconv.Itoa(r.ResearchRevisions),
		string(r.ResearchQAStatus),
		strconv.FormatFloat(r.KeywordCoverageRatio, 'f', -1, 64),
		strconv.Itoa(r.TierCounts[types.TierA]),
		strconv.Itoa(r.TierCounts[types.TierB]),
		strconv.Itoa(r.TierCounts[types.TierC]),
		strconv.Itoa(r.TierCounts[types.TierD]),
		strconv.Itoa(r.UniqueDomains),
		r.TopDomain,
		strconv.Itoa(r.CurriculumModules),
		strconv.Itoa(r.BriefGuidelines),
		string(r.QAStatus),
		string(r.QAAuthorityCheck),
		string(r.QACitationValidity),
		r.Notes,
	}
}

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "eval: writing csv header")
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return eris.Wrapf(err, "eval: writing row %s/%s", r.CaseID, r.ModeID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "eval: flushing csv")
}
