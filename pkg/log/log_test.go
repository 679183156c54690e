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

package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docxsr/pkg/document"
	"github.com/walteh/docxsr/pkg/index"
	"github.com/walteh/docxsr/pkg/log"
	"github.com/walteh/docxsr/pkg/match"
)

func matchIn(t *testing.T, text, pattern string) match.Match {
	t.Helper()
	doc := document.New()
	p := doc.AddParagraph(&document.Run{Text: text})
	logical, segments := index.Build(p)
	re, err := match.Compile(pattern, false)
	require.NoError(t, err)
	found, err := match.Find(logical, re)
	require.NoError(t, err)
	require.NotEmpty(t, found)
	match.Annotate(p, segments, found)
	return found[0]
}

func TestEntryFor(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		pattern     string
		wantMatch   string
		wantContext string
	}{
		{
			name:        "short_paragraph_shows_everything",
			text:        "This short example.",
			pattern:     "short",
			wantMatch:   "short",
			wantContext: "This short example.",
		},
		{
			name:        "long_paragraph_is_clamped",
			text:        strings.Repeat("a", 60) + "NEEDLE" + strings.Repeat("b", 60),
			pattern:     "NEEDLE",
			wantMatch:   "NEEDLE",
			wantContext: strings.Repeat("a", 40) + "NEEDLE" + strings.Repeat("b", 40),
		},
		{
			name:        "match_at_start",
			text:        "NEEDLE then a tail",
			pattern:     "NEEDLE",
			wantMatch:   "NEEDLE",
			wantContext: "NEEDLE then a tail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := matchIn(t, tt.text, tt.pattern)
			entry := log.EntryFor(m, tt.pattern)
			assert.Equal(t, tt.wantMatch, entry.Match)
			assert.Equal(t, tt.wantContext, entry.Context)
			assert.Equal(t, tt.pattern, entry.Pattern)
			assert.Equal(t, 1, entry.Objects)
		})
	}
}

func TestEntryFor_ClampsToRuneBoundary(t *testing.T) {
	// 41 bytes of multi-byte text before the match; a naive byte clamp would
	// land mid-rune
	prefix := strings.Repeat("ä", 20) + "x" // 41 bytes
	m := matchIn(t, prefix+"NEEDLE", "NEEDLE")
	entry := log.EntryFor(m, "NEEDLE")
	assert.True(t, strings.HasSuffix(entry.Context, "NEEDLE"))
	assert.True(t, strings.Contains(entry.Context, "x"))
	assert.True(t, utf8.ValidString(entry.Context), "context must decode cleanly: %q", entry.Context)
}

func TestEntryFor_CarriesHyperlink(t *testing.T) {
	doc := document.New()
	doc.RegisterHyperlink("rId1", "https://example.com")
	p := doc.AddParagraph(&document.Run{Text: "linked", HyperlinkID: "rId1"})
	logical, segments := index.Build(p)
	re, err := match.Compile("linked", false)
	require.NoError(t, err)
	found, err := match.Find(logical, re)
	require.NoError(t, err)
	match.Annotate(p, segments, found)

	entry := log.EntryFor(found[0], "linked")
	assert.Equal(t, "https://example.com", entry.Hyperlink)
}

func TestReport_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")
	report := log.NewReport("input.docx", []log.MatchEntry{
		{Match: "short", Context: "This short example.", Objects: 1, Pattern: "short"},
	})
	require.NoError(t, report.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got log.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "input.docx", got.Infile)
	assert.Equal(t, 1, got.NMatches)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "short", got.Matches[0].Match)
}

func TestListMatches(t *testing.T) {
	var console bytes.Buffer
	logger := log.New(&console, zerolog.Disabled)

	logger.ListMatches(context.Background(), []log.MatchEntry{
		{Match: "one", Context: "one two"},
		{Match: "two", Context: "one two", Hyperlink: "https://example.com"},
	})

	out := console.String()
	assert.Contains(t, out, `"one"`)
	assert.Contains(t, out, `"two"`)
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "2 matches listed.")
}
