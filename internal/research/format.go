// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// FormatTable writes selected sources as a human-readable table to w.
func FormatTable(result types.ResearchResult, w io.Writer) {
	if len(result.Sources) == 0 {
		fmt.Fprintln(w, "No sources selected.")
		return
	}

	fmt.Fprintf(w, "%-7s  %-4s  %-6s  %-50s  %-24s  %s\n",
		"ID", "Tier", "Score", "Title", "Domain", "Snippets")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, s := range result.Sources {
		fmt.Fprintf(w, "%-7s  %-4s  %-6.3f  %-50s  %-24s  %d\n",
			s.ID, s.AuthorityTier, s.Score, truncate(s.Title, 50), truncate(s.Domain, 24), len(s.Snippets))
	}

	fmt.Fprintf(w, "\n%d sources", len(result.Sources))
	if p := result.QueryPlan.DetectedProduct; p != "" && p != types.ProductNone {
		fmt.Fprintf(w, " (product: %s)", p)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the full research result as indented JSON to w.
func FormatJSON(result types.ResearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return textutil.Truncate(s, max-3) + "..."
}
