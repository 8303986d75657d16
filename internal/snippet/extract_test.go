// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingPage = `<html><body>
<h2>Security controls</h2>
<p>Apply governance and security reviews to every release so teams catch problems early.</p>
<p>General notes about the weather.</p>
<h2>Other</h2>
<p>Nothing relevant here at all, just some filler text describing the layout of pages.</p>
</body></html>`

func TestExtract_EmptyMarkup(t *testing.T) {
	assert.Empty(t, Extract("", []string{"governance"}, 4))
	assert.Empty(t, Extract("   \n", []string{"governance"}, 4))
	assert.Empty(t, Extract("<p>governance</p>", []string{"governance"}, 0))
}

func TestExtract_RanksByScoreThenOrder(t *testing.T) {
	got := Extract(rankingPage, []string{"governance", "security"}, 10)
	require.Len(t, got, 5)

	var locs []string
	for _, s := range got {
		locs = append(locs, s.Loc)
	}
	assert.Equal(t, []string{"p[1]", "h2[1]", "p[2]", "p[3]", "h2[2]"}, locs)
	assert.Equal(t, "Security controls", got[0].Heading)
	assert.Equal(t, "Other", got[3].Heading)
}

func TestExtract_MaxSnippets(t *testing.T) {
	got := Extract(rankingPage, []string{"governance", "security"}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "p[1]", got[0].Loc)
	assert.Equal(t, "h2[1]", got[1].Loc)
}

func TestExtract_TiesKeepDocumentOrder(t *testing.T) {
	page := `<p>Alpha paragraph with enough words to avoid the short penalty.</p>
<p>Bravo paragraph with enough words to avoid the short penalty.</p>
<p>Charlie paragraph with enough words to avoid the short penalty.</p>`
	got := Extract(page, []string{"unrelated"}, 3)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0].Text, "Alpha"))
	assert.True(t, strings.HasPrefix(got[1].Text, "Bravo"))
	assert.True(t, strings.HasPrefix(got[2].Text, "Charlie"))
}

func TestExtract_DropsBoilerplate(t *testing.T) {
	page := `<p>We use cookies to improve your experience on this site.</p>
<p>Sign in to continue reading the governance guidance.</p>
<li>Was this page helpful?</li>
<p>This browser is no longer supported. Upgrade to Microsoft Edge.</p>
<p>Read our Privacy statement before you continue with governance.</p>
<p>Submit and view feedback for this governance page.</p>
<p>Security governance guidance for administrators covers access reviews.</p>`

	got := Extract(page, []string{"governance", "security"}, 10)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "Security governance guidance")

	for _, s := range got {
		for _, phrase := range BoilerplatePhrases {
			assert.NotContains(t, strings.ToLower(s.Text), phrase)
		}
	}
}

func TestExtract_HeadingDefaultsToTag(t *testing.T) {
	got := Extract(`<p>A standalone paragraph before any heading appears in the page.</p>`, nil, 4)
	require.Len(t, got, 1)
	assert.Equal(t, "p", got[0].Heading)
	assert.Equal(t, "p[1]", got[0].Loc)
}

func TestExtract_LastHeadingWins(t *testing.T) {
	page := `<h1>First</h1><h3>Second</h3><p>Body text that is long enough to stay above the short cutoff.</p>`
	got := Extract(page, nil, 4)
	require.Len(t, got, 3)
	var body []string
	for _, s := range got {
		if s.Loc == "p[1]" {
			body = append(body, s.Heading)
		}
	}
	assert.Equal(t, []string{"Second"}, body)
}

func TestExtract_NestedContentFoldsIntoOuter(t *testing.T) {
	page := `<ul><li><p>Inner governance text</p> trailing words</li></ul>`
	got := Extract(page, []string{"governance"}, 4)
	require.Len(t, got, 1)
	assert.Equal(t, "li[1]", got[0].Loc)
	assert.Equal(t, "Inner governance text trailing words", got[0].Text)
}

func TestSegment_OmittedEndTags(t *testing.T) {
	page := `<p>First paragraph<p>Second paragraph` +
		`<ul><li>Item one<li>Item two</ul><h2>Next</h2><p>Closing text here.</p>`
	frags := segment(strings.NewReader(page))

	var got []string
	for _, f := range frags {
		got = append(got, f.loc+"="+f.text)
	}
	assert.Equal(t, []string{
		"p[1]=First paragraph",
		"p[2]=Second paragraph",
		"li[1]=Item one",
		"li[2]=Item two",
		"h2[1]=Next",
		"p[3]=Closing text here.",
	}, got)
	require.Len(t, frags, 6)
	assert.Equal(t, "p", frags[3].heading)
	assert.Equal(t, "Next", frags[5].heading)
}

func TestExtract_SkipsScriptAndStyle(t *testing.T) {
	page := `<p>Visible <script>var governance = 1;</script><style>.x{}</style>text &amp; more</p>`
	got := Extract(page, nil, 4)
	require.Len(t, got, 1)
	assert.Equal(t, "Visible text & more", got[0].Text)
}

func TestExtract_CollapsesAndTruncates(t *testing.T) {
	page := "<p>" + strings.Repeat("governance   guidance\n", 20) + "</p>"
	got := Extractor{MaxChars: 30}.Extract(page, []string{"governance"}, 1)
	require.Len(t, got, 1)
	assert.LessOrEqual(t, len(got[0].Text), 30)
	assert.NotContains(t, got[0].Text, "  ")
	assert.False(t, strings.HasSuffix(got[0].Text, " "))
}

func TestExtract_EmptyElementsSkipped(t *testing.T) {
	got := Extract(`<p>   </p><p></p><h2>Governance</h2>`, []string{"governance"}, 4)
	require.Len(t, got, 1)
	assert.Equal(t, "h2[1]", got[0].Loc)
}

func TestExtract_Deterministic(t *testing.T) {
	a := Extract(rankingPage, []string{"governance", "security"}, 4)
	b := Extract(rankingPage, []string{"governance", "security"}, 4)
	assert.Equal(t, a, b)
}

func TestNormalizeKeywords(t *testing.T) {
	ks := normalizeKeywords([]string{" Best Practices ", "alm", "ALM", ""})
	assert.Equal(t, []string{"best practices"}, ks.phrases)
	assert.Equal(t, []string{"alm", "best", "practices"}, ks.tokens.Sorted())
	assert.Equal(t, 3, ks.hits("Follow best practices"))
	assert.Equal(t, 0, ks.hits("stay calm"))
}
