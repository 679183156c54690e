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

// Package index derives the logical-text view of a paragraph: the
// concatenation of its run texts plus a segment map pointing every byte
// range back at the run that owns it. Segment maps are transient; they must
// be rebuilt after any structural mutation.
package index

import (
	"strings"

	"github.com/walteh/docxsr/pkg/document"
)

// 📐 Segment maps one run onto a byte range of the paragraph's logical text.
// Segments are contiguous and non-overlapping: segment[i].End ==
// segment[i+1].Start, the first starts at 0 and the last ends at the text
// length. Runs with empty text yield zero-width segments, kept for
// structural fidelity.
type Segment struct {
	Run   *document.Run
	Start int
	End   int
}

// Width returns the segment's byte width.
func (s Segment) Width() int {
	return s.End - s.Start
}

// 🛠️ Build returns the paragraph's logical text and its segment map in one
// linear pass. A zero-run paragraph yields an empty text and an empty map.
func Build(p *document.Paragraph) (string, []Segment) {
	runs := p.Runs()
	segments := make([]Segment, 0, len(runs))
	var sb strings.Builder
	offset := 0
	for _, r := range runs {
		segments = append(segments, Segment{
			Run:   r,
			Start: offset,
			End:   offset + len(r.Text),
		})
		sb.WriteString(r.Text)
		offset += len(r.Text)
	}
	return sb.String(), segments
}

// 🔍 Covered returns the segments strictly overlapped by [start, end).
// Zero-width segments are never covered; a zero-width range covers nothing.
func Covered(segments []Segment, start, end int) []Segment {
	if start >= end {
		return nil
	}
	var out []Segment
	for _, s := range segments {
		if s.Start < s.End && s.Start < end && s.End > start {
			out = append(out, s)
		}
	}
	return out
}

// Containing returns the non-zero-width segment containing the byte offset,
// if any.
func Containing(segments []Segment, offset int) (Segment, bool) {
	for _, s := range segments {
		if s.Start <= offset && offset < s.End {
			return s, true
		}
	}
	return Segment{}, false
}

// 🔗 ResolveHyperlink reports the hyperlink membership of the covered
// segments under the all-or-none policy: the range is associated only when
// every covered run shares one identical, non-empty hyperlink id. Mixed
// coverage (some wrapped, some not, or two distinct hyperlinks) resolves to
// no association.
func ResolveHyperlink(covered []Segment) (string, bool) {
	if len(covered) == 0 {
		return "", false
	}
	id := covered[0].Run.HyperlinkID
	if id == "" {
		return "", false
	}
	for _, s := range covered[1:] {
		if s.Run.HyperlinkID != id {
			return "", false
		}
	}
	return id, true
}
