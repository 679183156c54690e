// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package match locates pattern occurrences in the logical text of a
// paragraph. Finding is a pure function over the text; it never reads or
// writes run structure.
package match

import (
	"regexp"

	"github.com/walteh/docxsr/pkg/document"
	"github.com/walteh/docxsr/pkg/index"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrPattern marks pattern compilation failures.
	ErrPattern = errors.Base("pattern does not compile")

	// ErrEmptyMatch guards against a match with negative extent. The
	// zero-width advance rule makes this unreachable in practice.
	ErrEmptyMatch = errors.Base("match has negative extent")
)

// 🎯 Match is one located occurrence of a pattern. Offsets are byte offsets
// into the paragraph's logical text, end exclusive. A match becomes stale
// the moment any match in the same paragraph is applied; the engine's
// right-to-left batch application is the only sanctioned way to apply
// several at once.
type Match struct {
	Paragraph *document.Paragraph
	Start     int
	End       int
	Text      string

	// Groups holds the captured groups; Groups[0] is the whole match.
	// Unmatched optional groups are empty strings.
	Groups []string

	// Segments are the run segments covered by the match, resolved against
	// the segment map current at search time.
	Segments []index.Segment

	// HyperlinkID and HyperlinkURL are set when the covered runs all share
	// one hyperlink (all-or-none policy). The id can be set without a URL
	// for anchor-style links that carry no target relationship.
	HyperlinkID  string
	HyperlinkURL string
}

// Compile compiles a pattern source, optionally case-insensitive.
func Compile(src string, ignoreCase bool) (*regexp.Regexp, error) {
	if ignoreCase {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, errors.Errorf("%w: %w", ErrPattern, err)
	}
	return re, nil
}

// CompileLiteral compiles an exact-match pattern from a literal string.
func CompileLiteral(src string, ignoreCase bool) (*regexp.Regexp, error) {
	return Compile(regexp.QuoteMeta(src), ignoreCase)
}

// 🔍 Find scans the logical text and returns matches in leftmost-first,
// non-overlapping order: each scan resumes at the end of the previous match,
// and a zero-width match advances the scan by one text unit, so the result
// is bounded by len(text)+1 entries.
func Find(text string, re *regexp.Regexp) ([]Match, error) {
	idxs := re.FindAllStringSubmatchIndex(text, -1)
	matches := make([]Match, 0, len(idxs))
	for _, loc := range idxs {
		start, end := loc[0], loc[1]
		if end < start {
			return nil, errors.Errorf("%w: [%d, %d)", ErrEmptyMatch, start, end)
		}
		groups := make([]string, 0, len(loc)/2)
		for g := 0; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, text[loc[g]:loc[g+1]])
		}
		matches = append(matches, Match{
			Start:  start,
			End:    end,
			Text:   text[start:end],
			Groups: groups,
		})
	}
	return matches, nil
}

// 🔗 Annotate fills in the paragraph reference, the covered segments and the
// hyperlink association of matches found in that paragraph's logical text.
func Annotate(p *document.Paragraph, segments []index.Segment, matches []Match) {
	for i := range matches {
		m := &matches[i]
		m.Paragraph = p
		m.Segments = index.Covered(segments, m.Start, m.End)
		if id, ok := index.ResolveHyperlink(m.Segments); ok {
			m.HyperlinkID = id
			if url, found := p.Document().HyperlinkURL(id); found {
				m.HyperlinkURL = url
			}
		}
	}
}
