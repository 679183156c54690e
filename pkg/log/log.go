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

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/docxsr/pkg/index"
	"github.com/walteh/docxsr/pkg/match"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Display configuration
const (
	matchIndent  = 4  // spaces to indent match entries
	peekMaxChars = 40 // bytes of surrounding context shown per side
)

// 🎯 MatchEntry is the presentation form of one search match.
type MatchEntry struct {
	Match     string `json:"match"`
	Context   string `json:"context"`
	Objects   int    `json:"n_objects"`
	Pattern   string `json:"pattern"`
	Hyperlink string `json:"hyperlink,omitempty"`
}

// 🔍 EntryFor builds the presentation entry for a match: the matched text
// with up to peekMaxChars of surrounding paragraph text on each side.
func EntryFor(m match.Match, pattern string) MatchEntry {
	entry := MatchEntry{
		Match:     m.Text,
		Context:   m.Text,
		Objects:   len(m.Segments),
		Pattern:   pattern,
		Hyperlink: m.HyperlinkURL,
	}
	if m.Paragraph != nil {
		text, _ := index.Build(m.Paragraph)
		entry.Context = peek(text, m.Start, m.End)
	}
	return entry
}

// peek returns text[start:end] with surrounding context clamped to
// peekMaxChars per side and to rune boundaries.
func peek(text string, start, end int) string {
	if start < 0 || end > len(text) || start > end {
		return text
	}
	lo := start - peekMaxChars
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	hi := end + peekMaxChars
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

// 📄 Report is the JSON match report written by the search command.
type Report struct {
	Infile   string       `json:"infile"`
	NMatches int          `json:"n_matches"`
	Matches  []MatchEntry `json:"matches"`
}

// NewReport assembles a report for one document.
func NewReport(infile string, entries []MatchEntry) Report {
	return Report{Infile: infile, NMatches: len(entries), Matches: entries}
}

// 💾 Save writes the report as indented JSON.
func (r Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Errorf("encoding match report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("writing match report: %w", err)
	}
	return nil
}

// 💾 SaveReports writes a batch of per-document reports as one JSON array.
func SaveReports(path string, reports []Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return errors.Errorf("encoding match reports: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("writing match reports: %w", err)
	}
	return nil
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 📝 formatMatch formats a match entry for display
func (l *Logger) formatMatch(e MatchEntry) string {
	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", matchIndent, ""),
		color.New(color.FgGreen).Sprint("•"),
		color.New(color.Bold).Sprintf("%q", e.Match),
		color.New(color.Faint).Sprintf("…%s…", e.Context))
	if e.Hyperlink != "" {
		line += " " + color.New(color.FgCyan).Sprint("→ "+e.Hyperlink)
	}
	return line
}

// 📝 ListMatches prints every match with its context peek, then a count
// footer.
func (l *Logger) ListMatches(ctx context.Context, entries []MatchEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range entries {
		fmt.Fprintln(l.console, l.formatMatch(e))
		l.zlog.Info().
			Str("match", e.Match).
			Str("context", e.Context).
			Int("n_objects", e.Objects).
			Str("pattern", e.Pattern).
			Str("hyperlink", e.Hyperlink).
			Msg("match found")
	}
	fmt.Fprintf(l.console, "%d matches listed.\n", len(entries))
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("docxsr")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
