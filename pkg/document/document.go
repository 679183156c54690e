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

package document

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 🎨 Formatting is an opaque style payload carried by a run. Consumers clone
// it onto replacement runs; nothing in this module interprets its contents.
type Formatting interface {
	Clone() Formatting
}

// CloneFormatting clones f, tolerating nil.
func CloneFormatting(f Formatting) Formatting {
	if f == nil {
		return nil
	}
	return f.Clone()
}

// 🎨 Style is a simple map-backed Formatting used by in-memory documents.
type Style map[string]string

func (s Style) Clone() Formatting {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// 📄 Run is the smallest formatted unit of paragraph content.
type Run struct {
	Text        string
	Formatting  Formatting
	HyperlinkID string // relationship reference, empty when unwrapped
}

// 📸 RunSnapshot is a read-only copy of a run handed to replacement
// strategies before any mutation happens.
type RunSnapshot struct {
	Text        string
	Formatting  Formatting
	HyperlinkID string
}

// Snapshot returns a read-only copy of the run's current state.
func (r *Run) Snapshot() RunSnapshot {
	return RunSnapshot{
		Text:        r.Text,
		Formatting:  CloneFormatting(r.Formatting),
		HyperlinkID: r.HyperlinkID,
	}
}

// 📑 Paragraph owns an ordered sequence of runs. Run order is document order
// and is never reordered; identity is stable across edits.
type Paragraph struct {
	doc      *Document
	runs     []*Run
	modified bool
}

// Document returns the owning document.
func (p *Paragraph) Document() *Document {
	return p.doc
}

// Runs returns the runs in document order. The slice is a copy; the runs are
// the live objects.
func (p *Paragraph) Runs() []*Run {
	out := make([]*Run, len(p.runs))
	copy(out, p.runs)
	return out
}

// Len returns the number of runs.
func (p *Paragraph) Len() int {
	return len(p.runs)
}

// Modified reports whether any mutation primitive has touched the paragraph.
func (p *Paragraph) Modified() bool {
	return p.modified
}

// IndexOf returns the position of run in the paragraph, or -1.
func (p *Paragraph) IndexOf(run *Run) int {
	for i, r := range p.runs {
		if r == run {
			return i
		}
	}
	return -1
}

// ✂️ SplitRun splits run at the given byte offset, which must fall strictly
// inside its text. The original run keeps the left portion (its identity and
// prefix are preserved); a new run carrying the right portion, a clone of the
// formatting and the same hyperlink membership is inserted directly after.
// The new run is returned.
func (p *Paragraph) SplitRun(run *Run, offset int) (*Run, error) {
	pos := p.IndexOf(run)
	if pos < 0 {
		return nil, errors.Errorf("splitting run: run not in paragraph")
	}
	if offset <= 0 || offset >= len(run.Text) {
		return nil, errors.Errorf("splitting run: offset %d outside (0, %d)", offset, len(run.Text))
	}
	right := &Run{
		Text:        run.Text[offset:],
		Formatting:  CloneFormatting(run.Formatting),
		HyperlinkID: run.HyperlinkID,
	}
	run.Text = run.Text[:offset]
	p.runs = append(p.runs, nil)
	copy(p.runs[pos+2:], p.runs[pos+1:])
	p.runs[pos+1] = right
	p.modified = true
	return right, nil
}

// ➕ InsertRun inserts run at the given position (0 ≤ pos ≤ Len).
func (p *Paragraph) InsertRun(pos int, run *Run) error {
	if pos < 0 || pos > len(p.runs) {
		return errors.Errorf("inserting run: position %d outside [0, %d]", pos, len(p.runs))
	}
	p.runs = append(p.runs, nil)
	copy(p.runs[pos+1:], p.runs[pos:])
	p.runs[pos] = run
	p.modified = true
	return nil
}

// ➖ DeleteRun removes run from the paragraph.
func (p *Paragraph) DeleteRun(run *Run) error {
	pos := p.IndexOf(run)
	if pos < 0 {
		return errors.Errorf("deleting run: run not in paragraph")
	}
	p.runs = append(p.runs[:pos], p.runs[pos+1:]...)
	p.modified = true
	return nil
}

// 🔗 WrapHyperlink associates run with the given relationship id.
func (p *Paragraph) WrapHyperlink(run *Run, relID string) {
	run.HyperlinkID = relID
	p.modified = true
}

// 🔗 UnwrapHyperlink clears the run's hyperlink membership.
func (p *Paragraph) UnwrapHyperlink(run *Run) {
	run.HyperlinkID = ""
	p.modified = true
}

// 📚 Document is the ordered owner of paragraphs plus the hyperlink
// relationship table (rel id → URL). The hyperlink owns the URL; runs merely
// reference the id.
type Document struct {
	paragraphs []*Paragraph
	hyperlinks map[string]string
	reserved   map[string]bool
	nextRel    int
}

// New creates an empty document.
func New() *Document {
	return &Document{
		hyperlinks: make(map[string]string),
		reserved:   make(map[string]bool),
		nextRel:    1,
	}
}

// AddParagraph appends a paragraph owning the given runs.
func (d *Document) AddParagraph(runs ...*Run) *Paragraph {
	p := &Paragraph{doc: d, runs: runs}
	d.paragraphs = append(d.paragraphs, p)
	return p
}

// Paragraphs returns the paragraphs in document order.
func (d *Document) Paragraphs() []*Paragraph {
	out := make([]*Paragraph, len(d.paragraphs))
	copy(out, d.paragraphs)
	return out
}

// HyperlinkURL returns the URL behind a relationship id.
func (d *Document) HyperlinkURL(id string) (string, bool) {
	url, ok := d.hyperlinks[id]
	return url, ok
}

// Hyperlinks returns a copy of the relationship table.
func (d *Document) Hyperlinks() map[string]string {
	out := make(map[string]string, len(d.hyperlinks))
	for k, v := range d.hyperlinks {
		out[k] = v
	}
	return out
}

// RegisterHyperlink records an existing relationship (used by container
// adapters when loading a document). The id is also reserved.
func (d *Document) RegisterHyperlink(id, url string) {
	d.hyperlinks[id] = url
	d.reserved[id] = true
}

// ReserveRelID marks a relationship id as taken without associating a URL,
// so AddHyperlink never collides with non-hyperlink relationships.
func (d *Document) ReserveRelID(id string) {
	d.reserved[id] = true
}

// 🔗 AddHyperlink returns the id of a hyperlink relationship targeting url,
// reusing an existing one or allocating a fresh rId.
func (d *Document) AddHyperlink(url string) string {
	for id, target := range d.hyperlinks {
		if target == url {
			return id
		}
	}
	for {
		id := fmt.Sprintf("rId%d", d.nextRel)
		d.nextRel++
		if !d.reserved[id] {
			d.RegisterHyperlink(id, url)
			return id
		}
	}
}

// SetHyperlinkURL retargets an existing relationship in place.
func (d *Document) SetHyperlinkURL(id, url string) error {
	if _, ok := d.hyperlinks[id]; !ok {
		return errors.Errorf("setting hyperlink url: unknown relationship %q", id)
	}
	d.hyperlinks[id] = url
	return nil
}
