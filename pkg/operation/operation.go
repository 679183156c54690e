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

// Package operation composes index, match and engine into the search and
// replace operations exposed to callers.
package operation

import (
	"context"
	"regexp"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/docxsr/pkg/document"
	"github.com/walteh/docxsr/pkg/engine"
	"github.com/walteh/docxsr/pkg/index"
	"github.com/walteh/docxsr/pkg/match"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options contains configuration for the operator.
type Options struct {
	// Document is the document to operate on.
	Document *document.Document
	// Parallel applies per-paragraph batches concurrently. Mutation scope
	// is strictly paragraph-local, so independent paragraphs need no
	// locking.
	Parallel bool
}

// 🎮 Operator runs search and replace over one document. It owns a local
// pattern-compilation cache keyed by pattern source and flags; there is no
// process-wide pattern state.
type Operator struct {
	doc      *document.Document
	parallel bool

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// 🏭 New creates a new operator with the given options.
func New(opts Options) (*Operator, error) {
	if opts.Document == nil {
		return nil, errors.Errorf("document is required")
	}
	return &Operator{
		doc:      opts.Document,
		parallel: opts.Parallel,
		patterns: make(map[string]*regexp.Regexp),
	}, nil
}

// Document returns the document the operator works on.
func (o *Operator) Document() *document.Document {
	return o.doc
}

// Compile returns a compiled pattern, consulting the operator's cache.
func (o *Operator) Compile(src string, ignoreCase bool) (*regexp.Regexp, error) {
	return o.cached(src, ignoreCase, false)
}

// CompileLiteral returns an exact-match pattern for a literal string,
// consulting the operator's cache.
func (o *Operator) CompileLiteral(src string, ignoreCase bool) (*regexp.Regexp, error) {
	return o.cached(src, ignoreCase, true)
}

func (o *Operator) cached(src string, ignoreCase, literal bool) (*regexp.Regexp, error) {
	key := "p:"
	if literal {
		key = "l:"
	}
	if ignoreCase {
		key += "i:"
	}
	key += src

	o.mu.Lock()
	defer o.mu.Unlock()
	if re, ok := o.patterns[key]; ok {
		return re, nil
	}

	var re *regexp.Regexp
	var err error
	if literal {
		re, err = match.CompileLiteral(src, ignoreCase)
	} else {
		re, err = match.Compile(src, ignoreCase)
	}
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", src, err)
	}
	o.patterns[key] = re
	return re, nil
}

// 🔍 SearchParagraphs scans every paragraph and returns matches in paragraph
// order, then start-offset order. Searching never mutates; two consecutive
// calls without an intervening replacement return identical results.
func (o *Operator) SearchParagraphs(ctx context.Context, re *regexp.Regexp) ([]match.Match, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("pattern", re.String()).Msg("searching paragraphs")

	var all []match.Match
	for _, p := range o.doc.Paragraphs() {
		text, segments := index.Build(p)
		if text == "" && len(segments) == 0 {
			continue
		}
		found, err := match.Find(text, re)
		if err != nil {
			return nil, errors.Errorf("searching paragraph: %w", err)
		}
		match.Annotate(p, segments, found)
		all = append(all, found...)
	}

	logger.Debug().Int("matches", len(all)).Msg("search complete")
	return all, nil
}

// 🔄 ReplaceAll applies the given matches with one strategy, grouping them
// by paragraph and running one engine session per affected paragraph. The
// outcome list enumerates every match in the order given.
func (o *Operator) ReplaceAll(ctx context.Context, matches []match.Match, strategy engine.Strategy) ([]engine.Outcome, error) {
	if strategy == nil {
		return nil, errors.Errorf("strategy is required")
	}

	// group by paragraph, preserving first-seen order
	type group struct {
		paragraph *document.Paragraph
		matches   []match.Match
		indices   []int
	}
	var groups []*group
	byPar := make(map[*document.Paragraph]*group)
	for i, m := range matches {
		g, ok := byPar[m.Paragraph]
		if !ok {
			g = &group{paragraph: m.Paragraph}
			byPar[m.Paragraph] = g
			groups = append(groups, g)
		}
		g.matches = append(g.matches, m)
		g.indices = append(g.indices, i)
	}

	outcomes := make([]engine.Outcome, len(matches))
	results := make([][]engine.Outcome, len(groups))

	apply := func(gi int) error {
		g := groups[gi]
		sess := engine.NewSession(g.paragraph)
		out, err := sess.Apply(ctx, g.matches, strategy)
		if err != nil {
			return errors.Errorf("applying batch: %w", err)
		}
		results[gi] = out
		return nil
	}

	if o.parallel && len(groups) > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		for gi := range groups {
			gi := gi
			eg.Go(func() error {
				select {
				case <-egCtx.Done():
					return egCtx.Err()
				default:
				}
				return apply(gi)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for gi := range groups {
			if err := apply(gi); err != nil {
				return nil, err
			}
		}
	}

	for gi, g := range groups {
		for j, idx := range g.indices {
			outcomes[idx] = results[gi][j]
		}
	}
	return outcomes, nil
}

// 📝 SearchReplace is the convenience form: the literal string is treated as
// an exact-match pattern and every occurrence is replaced with the fixed
// replacement. When max > 0 only the first max matches are replaced.
func (o *Operator) SearchReplace(ctx context.Context, literal, replacement string, max int) ([]engine.Outcome, error) {
	if max < 0 {
		return nil, errors.Errorf("max replacements must be >= 0")
	}
	re, err := o.CompileLiteral(literal, false)
	if err != nil {
		return nil, err
	}
	matches, err := o.SearchParagraphs(ctx, re)
	if err != nil {
		return nil, err
	}
	if max > 0 && len(matches) > max {
		zerolog.Ctx(ctx).Info().Int("max", max).Msg("match limit reached")
		matches = matches[:max]
	}
	return o.ReplaceAll(ctx, matches, engine.Literal{Text: replacement})
}

// 🔁 Sub replaces every occurrence of the pattern with the expansion of a
// template supporting group backreferences, e.g. Sub(ctx, `(\w+) world`,
// "$1 earth").
func (o *Operator) Sub(ctx context.Context, re *regexp.Regexp, template string) ([]engine.Outcome, error) {
	matches, err := o.SearchParagraphs(ctx, re)
	if err != nil {
		return nil, err
	}
	return o.ReplaceAll(ctx, matches, engine.Substitution{Pattern: re, Template: template})
}
