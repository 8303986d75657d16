// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// TruncationMarker ends a context pack that hit its bound.
const TruncationMarker = "\n[TRUNCATED]"

// truncationReserve is the room kept for the marker.
const truncationReserve = 16

// snippetLinesPerSource caps snippet lines listed under each source.
const snippetLinesPerSource = 2

// BuildContextPack renders the selected sources as a digest of at most
// maxChars characters.
func BuildContextPack(topic, audience string, sources []types.Source, maxChars int) string {
	lines := []string{
		"Topic: " + topic,
		"Audience: " + audience,
		"",
		"Sources:",
	}
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | %s", s.ID, s.AuthorityTier, s.Title, s.URL))
		n := min(len(s.Snippets), snippetLinesPerSource)
		for _, sn := range s.Snippets[:n] {
			if text := strings.TrimSpace(sn.Text); text != "" {
				lines = append(lines, "  - "+text)
			}
		}
	}
	text := strings.Join(lines, "\n")
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	return textutil.Truncate(text, max(maxChars-truncationReserve, 0)) + TruncationMarker
}
