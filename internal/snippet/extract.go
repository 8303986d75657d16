// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snippet segments fetched web markup into heading-aware text
// fragments, drops page chrome, and ranks what remains against the
// research intent keywords.
package snippet

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// DefaultMaxChars caps the text of each returned snippet.
const DefaultMaxChars = 1200

// Scoring weights.
const (
	headingHitBonus    = 2.0
	bodyHitBonus       = 1.0
	perHitBonus        = 0.3
	maxPerHitBonus     = 1.5
	longBodyBonus      = 0.5
	longBodyChars      = 120
	boilerplatePenalty = 2.0
	shortBodyPenalty   = 1.0
	shortBodyChars     = 40
	discardThreshold   = -1.5
)

// BoilerplatePhrases marks fragments that are site chrome rather than content.
var BoilerplatePhrases = []string{
	"cookie",
	"sign in",
	"signing in",
	"sign-in",
	"browser is no longer supported",
	"upgrade to microsoft edge",
	"requires authorization",
	"privacy",
	"was this page helpful",
	"feedback",
	"table of contents",
	"skip to main content",
}

var contentTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.P: true, atom.Li: true,
}

var headingTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
}

// ignoredTags hold text that never reaches the reader.
var ignoredTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// fragment is one content-bearing element in document order.
type fragment struct {
	tag     string
	heading string
	text    string
	loc     string
	order   int
	score   float64
}

// Extractor ranks fragments of a document. The zero value uses
// DefaultMaxChars.
type Extractor struct {
	MaxChars int
}

// Extract returns at most maxSnippets ranked snippets from markup. Empty
// or unparsable markup yields no snippets.
func Extract(markup string, intentKeywords []string, maxSnippets int) []types.Snippet {
	return Extractor{}.Extract(markup, intentKeywords, maxSnippets)
}

// Extract returns at most maxSnippets ranked snippets from markup.
func (e Extractor) Extract(markup string, intentKeywords []string, maxSnippets int) []types.Snippet {
	if strings.TrimSpace(markup) == "" || maxSnippets <= 0 {
		return nil
	}
	maxChars := e.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	keywords := normalizeKeywords(intentKeywords)
	var kept []fragment
	for _, f := range segment(strings.NewReader(markup)) {
		f.score = score(f, keywords)
		if isBoilerplate(f.text) || f.score <= discardThreshold {
			continue
		}
		kept = append(kept, f)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].order < kept[j].order
	})
	if len(kept) > maxSnippets {
		kept = kept[:maxSnippets]
	}

	out := make([]types.Snippet, 0, len(kept))
	for _, f := range kept {
		out = append(out, types.Snippet{
			Heading: f.heading,
			Text:    textutil.Truncate(f.text, maxChars),
			Loc:     f.loc,
		})
	}
	return out
}

// segment parses markup and emits one fragment per outermost content
// element in document order. Nested content elements fold into their
// parent. The parser closes elements whose end tags were omitted.
func segment(r io.Reader) []fragment {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	var (
		frags   []fragment
		counts  = map[string]int{}
		heading string
	)

	emit := func(n *html.Node) {
		var buf strings.Builder
		collectText(n, &buf)
		text := textutil.CollapseWhitespace(buf.String())
		if text == "" {
			return
		}
		tag := n.DataAtom.String()
		counts[tag]++
		h := heading
		if headingTags[n.DataAtom] {
			heading = text
			h = text
		}
		if h == "" {
			h = tag
		}
		frags = append(frags, fragment{
			tag:     tag,
			heading: h,
			text:    text,
			loc:     fmt.Sprintf("%s[%d]", tag, counts[tag]),
			order:   len(frags),
		})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ignoredTags[n.DataAtom] {
				return
			}
			if contentTags[n.DataAtom] {
				emit(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return frags
}

// collectText appends the visible text under n, one space per text node.
func collectText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		buf.WriteByte(' ')
		return
	case html.ElementNode:
		if ignoredTags[n.DataAtom] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}

// keywordSet holds normalized phrases and their component tokens.
type keywordSet struct {
	phrases []string
	tokens  textutil.TokenSet
}

// normalizeKeywords lowercases and trims each keyword. Single-word keywords
// match as tokens; anything else matches as a phrase and also contributes
// its tokens.
func normalizeKeywords(keywords []string) keywordSet {
	ks := keywordSet{tokens: make(textutil.TokenSet)}
	seen := map[string]bool{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		toks := textutil.Tokenize(k)
		if len(toks) != 1 || !toks.Has(k) {
			ks.phrases = append(ks.phrases, k)
		}
		ks.tokens.Add(toks)
	}
	return ks
}

// hits counts the distinct keywords found in text.
func (ks keywordSet) hits(text string) int {
	lower := strings.ToLower(text)
	textTokens := textutil.Tokenize(text)
	matched := map[string]bool{}
	for _, p := range ks.phrases {
		if strings.Contains(lower, p) {
			matched[p] = true
		}
	}
	for tok := range ks.tokens {
		if textTokens.Has(tok) {
			matched[tok] = true
		}
	}
	return len(matched)
}

func score(f fragment, ks keywordSet) float64 {
	var s float64
	headingHit := ks.hits(f.heading) > 0
	if headingHit {
		s += headingHitBonus
	}
	if hits := ks.hits(f.text); hits > 0 {
		s += bodyHitBonus + min(float64(hits)*perHitBonus, maxPerHitBonus)
	}
	n := utf8.RuneCountInString(f.text)
	if n >= longBodyChars {
		s += longBodyBonus
	}
	if isBoilerplate(f.text) {
		s -= boilerplatePenalty
	}
	if n < shortBodyChars && !headingHit {
		s -= shortBodyPenalty
	}
	return s
}

func isBoilerplate(text string) bool {
	return textutil.ContainsAny(text, BoilerplatePhrases)
}
