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
	"regexp"
	"unicode"

	"github.com/walteh/docxsr/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// 🔗 Directive states what happens to the hyperlink wrapping of a
// replacement run.
type Directive int

const (
	// DirectiveUnchanged preserves the original wrapping state, wrapped or
	// not, around the replacement run.
	DirectiveUnchanged Directive = iota
	// DirectiveSet wraps the replacement run in a hyperlink with Result.URL,
	// retargeting the original relationship when one was associated and
	// creating one otherwise.
	DirectiveSet
	// DirectiveRemove leaves the replacement run unwrapped even if the
	// source was wrapped.
	DirectiveRemove
)

// String returns a string representation of the directive.
func (d Directive) String() string {
	switch d {
	case DirectiveUnchanged:
		return "unchanged"
	case DirectiveSet:
		return "set"
	case DirectiveRemove:
		return "removed"
	default:
		return "unknown"
	}
}

// 📝 Result is what a strategy decided for one match: the text to substitute
// plus the hyperlink disposition.
type Result struct {
	Text      string
	Directive Directive
	URL       string // target for DirectiveSet
}

// 🔌 Strategy computes the replacement for a single match. It is invoked
// against the original, pre-edit snapshots of the covered runs, so a
// callback always observes consistent context regardless of later edits.
type Strategy interface {
	Resolve(matched string, hyperlinkURL string, covered []document.RunSnapshot) (Result, error)
}

// StrategyFunc adapts a plain function to the Strategy interface (the
// callback variant).
type StrategyFunc func(matched string, hyperlinkURL string, covered []document.RunSnapshot) (Result, error)

func (f StrategyFunc) Resolve(matched string, hyperlinkURL string, covered []document.RunSnapshot) (Result, error) {
	return f(matched, hyperlinkURL, covered)
}

// 📌 Literal always substitutes a fixed string and leaves hyperlink wrapping
// unchanged.
type Literal struct {
	Text string
}

func (l Literal) Resolve(string, string, []document.RunSnapshot) (Result, error) {
	return Result{Text: l.Text, Directive: DirectiveUnchanged}, nil
}

// 🔁 Substitution applies a template with group backreferences ($1, ${name})
// to the matched text, hyperlink wrapping unchanged.
type Substitution struct {
	Pattern  *regexp.Regexp
	Template string
}

func (s Substitution) Resolve(matched string, _ string, _ []document.RunSnapshot) (Result, error) {
	if s.Pattern == nil {
		return Result{}, errors.Errorf("substitution strategy has no pattern")
	}
	return Result{
		Text:      s.Pattern.ReplaceAllString(matched, s.Template),
		Directive: DirectiveUnchanged,
	}, nil
}

// 🔄 SwapCase is the illustrative callback strategy: it swaps the case of
// the matched text and, when the match is hyperlink-associated, redirects
// the hyperlink to the case-swapped URL.
func SwapCase() Strategy {
	return StrategyFunc(func(matched string, hyperlinkURL string, _ []document.RunSnapshot) (Result, error) {
		res := Result{Text: swapCaseString(matched), Directive: DirectiveUnchanged}
		if hyperlinkURL != "" {
			res.Directive = DirectiveSet
			res.URL = swapCaseString(hyperlinkURL)
		}
		return res, nil
	})
}

func swapCaseString(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case unicode.IsUpper(r):
			out[i] = unicode.ToLower(r)
		case unicode.IsLower(r):
			out[i] = unicode.ToUpper(r)
		}
	}
	return string(out)
}
