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

package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/docxsr/pkg/document"
	"github.com/walteh/docxsr/pkg/index"
	"github.com/walteh/docxsr/pkg/match"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrStrategy marks a strategy invocation that failed or returned a
	// malformed result.
	ErrStrategy = errors.Base("strategy failed")

	// ErrStructural marks a segment map that does not cover the claimed
	// range contiguously.
	ErrStructural = errors.Base("structural inconsistency")
)

// 📊 SessionState tracks a per-paragraph edit session.
type SessionState int

const (
	StateReady SessionState = iota
	StateEditing
	StateCommitted        // terminal: every match applied
	StateCommittedPartial // terminal: at least one match failed
)

// String returns a string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	case StateCommitted:
		return "committed"
	case StateCommittedPartial:
		return "committed-partial"
	default:
		return "unknown"
	}
}

// 📊 OutcomeStatus is the per-match result of a batch application.
type OutcomeStatus int

const (
	OutcomeApplied OutcomeStatus = iota
	OutcomeFailed
)

// String returns a string representation of the outcome status.
func (s OutcomeStatus) String() string {
	if s == OutcomeApplied {
		return "applied"
	}
	return "failed"
}

// 🧾 Outcome reports what happened to one match. Failed matches carry the
// reason; they are never silently dropped.
type Outcome struct {
	Match  match.Match
	Status OutcomeStatus
	Text   string // replacement text, when applied
	Err    error  // failure reason, when failed
}

// 🎮 Session applies one paragraph's batch of replacements. It moves
// READY → EDITING → COMMITTED, or COMMITTED-PARTIAL when any match failed.
type Session struct {
	paragraph *document.Paragraph
	state     SessionState
}

// NewSession creates an edit session for one paragraph.
func NewSession(p *document.Paragraph) *Session {
	return &Session{paragraph: p, state: StateReady}
}

// State returns the session state.
func (s *Session) State() SessionState {
	return s.state
}

// resolved is a strategy decision paired with the pre-edit run snapshots it
// was computed from.
type resolved struct {
	result    Result
	snapshots []document.RunSnapshot
	err       error
}

// 🏃 Apply resolves every match against the original run snapshots, then
// applies the batch in descending start-offset order directly against the
// offsets recorded at search time. Each edit only changes text at or after
// its own start offset, so applying back-to-front leaves every pending
// match's offsets valid with no delta bookkeeping.
//
// Outcomes are returned in the order the matches were given. A strategy or
// structural failure is scoped to its match; the rest of the batch proceeds.
func (s *Session) Apply(ctx context.Context, matches []match.Match, strategy Strategy) ([]Outcome, error) {
	logger := zerolog.Ctx(ctx)

	if s.state != StateReady {
		return nil, errors.Errorf("session already %s", s.state)
	}
	if strategy == nil {
		return nil, errors.Errorf("strategy is required")
	}
	for i := range matches {
		if matches[i].Paragraph != s.paragraph {
			return nil, errors.Errorf("match %d belongs to another paragraph", i)
		}
	}

	outcomes := make([]Outcome, len(matches))
	decisions := make([]resolved, len(matches))

	// Resolve before mutate: every strategy call sees the original,
	// pre-edit context.
	for i := range matches {
		decisions[i] = s.resolve(&matches[i], strategy)
	}

	s.state = StateEditing
	partial := false

	// Apply right-to-left against the original offsets.
	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return matches[order[a]].Start > matches[order[b]].Start
	})

	for _, i := range order {
		m := matches[i]
		outcomes[i].Match = m

		if decisions[i].err != nil {
			outcomes[i].Status = OutcomeFailed
			outcomes[i].Err = decisions[i].err
			partial = true
			logger.Debug().Int("start", m.Start).Err(decisions[i].err).Msg("match skipped, strategy failed")
			continue
		}

		if err := s.splice(m, decisions[i]); err != nil {
			outcomes[i].Status = OutcomeFailed
			outcomes[i].Err = err
			partial = true
			logger.Debug().Int("start", m.Start).Err(err).Msg("match failed during splice")
			continue
		}

		outcomes[i].Status = OutcomeApplied
		outcomes[i].Text = decisions[i].result.Text
		logger.Debug().
			Int("start", m.Start).
			Int("end", m.End).
			Str("text", m.Text).
			Str("replacement", decisions[i].result.Text).
			Msg("match applied")
	}

	if partial {
		s.state = StateCommittedPartial
	} else {
		s.state = StateCommitted
	}
	return outcomes, nil
}

// resolve invokes the strategy with the match's original context and
// validates the result.
func (s *Session) resolve(m *match.Match, strategy Strategy) resolved {
	if m.End < m.Start {
		return resolved{err: errors.Errorf("%w: match [%d, %d)", match.ErrEmptyMatch, m.Start, m.End)}
	}

	snapshots := make([]document.RunSnapshot, len(m.Segments))
	for i, seg := range m.Segments {
		snapshots[i] = seg.Run.Snapshot()
	}

	result, err := strategy.Resolve(m.Text, m.HyperlinkURL, snapshots)
	if err != nil {
		return resolved{err: errors.Errorf("%w: %w", ErrStrategy, err)}
	}
	if result.Directive == DirectiveSet && result.URL == "" {
		return resolved{err: errors.Errorf("%w: set directive without a URL", ErrStrategy)}
	}
	return resolved{result: result, snapshots: snapshots}
}

// splice replaces the match's covered range with a single replacement run,
// preserving unaffected remainders of the first and last covered runs with
// their original formatting and hyperlink membership.
func (s *Session) splice(m match.Match, dec resolved) error {
	p := s.paragraph

	if len(m.Segments) == 0 {
		if m.Start != m.End {
			return errors.Errorf("%w: no segments cover [%d, %d)", ErrStructural, m.Start, m.End)
		}
		return s.insertAt(m, dec)
	}

	if err := validateCoverage(m); err != nil {
		return err
	}

	first := m.Segments[0]
	last := m.Segments[len(m.Segments)-1]

	// Split the tail boundary first: the last covered run keeps only the
	// covered portion, the remainder survives to its right.
	tailOff := m.End - last.Start
	if tailOff < len(last.Run.Text) {
		if _, err := p.SplitRun(last.Run, tailOff); err != nil {
			return errors.Errorf("%w: tail split: %w", ErrStructural, err)
		}
	}

	// Split the head boundary: the original first run keeps the unaffected
	// prefix, a fresh run carries the covered portion.
	head := first.Run
	headOff := m.Start - first.Start
	if headOff > 0 {
		covered, err := p.SplitRun(first.Run, headOff)
		if err != nil {
			return errors.Errorf("%w: head split: %w", ErrStructural, err)
		}
		head = covered
	}

	// Collect the runs now fully inside the covered range, in order.
	doomed := make([]*document.Run, 0, len(m.Segments))
	doomed = append(doomed, head)
	for _, seg := range m.Segments[1:] {
		doomed = append(doomed, seg.Run)
	}

	insertPos := p.IndexOf(head)
	if insertPos < 0 {
		return errors.Errorf("%w: covered run vanished from paragraph", ErrStructural)
	}
	for _, r := range doomed {
		if err := p.DeleteRun(r); err != nil {
			return errors.Errorf("%w: deleting covered run: %w", ErrStructural, err)
		}
	}

	// First-run-formatting-wins: the replacement copies the formatting the
	// first originally-covered run had before any edit.
	replacement := &document.Run{
		Text:       dec.result.Text,
		Formatting: document.CloneFormatting(dec.snapshots[0].Formatting),
	}
	if err := p.InsertRun(insertPos, replacement); err != nil {
		return errors.Errorf("%w: inserting replacement: %w", ErrStructural, err)
	}

	return s.applyDirective(replacement, m, dec.result)
}

// insertAt handles a zero-width match: the replacement text is inserted at
// the offset, splitting the containing run when the offset falls inside one.
// The inserted run copies the formatting of the run it lands in.
func (s *Session) insertAt(m match.Match, dec resolved) error {
	p := s.paragraph
	_, segments := index.Build(p)

	pos := len(p.Runs())
	var formatting document.Formatting

	if seg, ok := index.Containing(segments, m.Start); ok {
		formatting = document.CloneFormatting(seg.Run.Formatting)
		if off := m.Start - seg.Start; off > 0 {
			right, err := p.SplitRun(seg.Run, off)
			if err != nil {
				return errors.Errorf("%w: split at insertion point: %w", ErrStructural, err)
			}
			pos = p.IndexOf(right)
		} else {
			pos = p.IndexOf(seg.Run)
		}
	} else if n := len(segments); n > 0 {
		formatting = document.CloneFormatting(segments[n-1].Run.Formatting)
	}

	replacement := &document.Run{Text: dec.result.Text, Formatting: formatting}
	if err := p.InsertRun(pos, replacement); err != nil {
		return errors.Errorf("%w: inserting at offset %d: %w", ErrStructural, m.Start, err)
	}
	return s.applyDirective(replacement, m, dec.result)
}

// applyDirective settles the hyperlink wrapping of the replacement run.
func (s *Session) applyDirective(run *document.Run, m match.Match, res Result) error {
	p := s.paragraph
	switch res.Directive {
	case DirectiveUnchanged:
		if m.HyperlinkID != "" {
			p.WrapHyperlink(run, m.HyperlinkID)
		}
	case DirectiveSet:
		doc := p.Document()
		if m.HyperlinkID != "" && m.HyperlinkURL != "" {
			// the match was associated: retarget the relationship in place
			if err := doc.SetHyperlinkURL(m.HyperlinkID, res.URL); err != nil {
				return errors.Errorf("%w: %w", ErrStructural, err)
			}
			p.WrapHyperlink(run, m.HyperlinkID)
		} else {
			p.WrapHyperlink(run, doc.AddHyperlink(res.URL))
		}
	case DirectiveRemove:
		p.UnwrapHyperlink(run)
	default:
		return errors.Errorf("%w: unknown directive %d", ErrStrategy, res.Directive)
	}
	return nil
}

// validateCoverage checks that the match's recorded segments still cover the
// claimed range contiguously and that the range still spells the matched
// text. A mismatch means the segment map went stale.
func validateCoverage(m match.Match) error {
	segs := m.Segments
	if m.Start < segs[0].Start || m.Start >= segs[0].End {
		return errors.Errorf("%w: start %d outside first segment [%d, %d)", ErrStructural, m.Start, segs[0].Start, segs[0].End)
	}
	last := segs[len(segs)-1]
	if m.End <= last.Start || m.End > last.End {
		return errors.Errorf("%w: end %d outside last segment [%d, %d)", ErrStructural, m.End, last.Start, last.End)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i-1].End != segs[i].Start {
			return errors.Errorf("%w: segments %d and %d not contiguous", ErrStructural, i-1, i)
		}
	}

	var got string
	for _, seg := range segs {
		lo := seg.Start
		if m.Start > lo {
			lo = m.Start
		}
		hi := seg.End
		if m.End < hi {
			hi = m.End
		}
		lo -= seg.Start
		hi -= seg.Start
		if lo < 0 || hi > len(seg.Run.Text) || lo > hi {
			return errors.Errorf("%w: segment no longer covers its range", ErrStructural)
		}
		got += seg.Run.Text[lo:hi]
	}
	if got != m.Text {
		return errors.Errorf("%w: covered text %q does not match %q", ErrStructural, got, m.Text)
	}
	return nil
}
