package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docxsr/pkg/document"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		wantText  string
		wantEdges [][2]int
	}{
		{
			name:      "single_run",
			texts:     []string{"Hello"},
			wantText:  "Hello",
			wantEdges: [][2]int{{0, 5}},
		},
		{
			name:      "multiple_runs",
			texts:     []string{"Hello", " ", "World"},
			wantText:  "Hello World",
			wantEdges: [][2]int{{0, 5}, {5, 6}, {6, 11}},
		},
		{
			name:      "empty_run_kept_as_zero_width",
			texts:     []string{"ab", "", "cd"},
			wantText:  "abcd",
			wantEdges: [][2]int{{0, 2}, {2, 2}, {2, 4}},
		},
		{
			name:      "zero_run_paragraph",
			texts:     nil,
			wantText:  "",
			wantEdges: [][2]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New()
			runs := make([]*document.Run, len(tt.texts))
			for i, s := range tt.texts {
				runs[i] = &document.Run{Text: s}
			}
			p := doc.AddParagraph(runs...)

			text, segments := Build(p)
			assert.Equal(t, tt.wantText, text)
			require.Len(t, segments, len(tt.wantEdges))

			for i, edge := range tt.wantEdges {
				assert.Equal(t, edge[0], segments[i].Start)
				assert.Equal(t, edge[1], segments[i].End)
				assert.Same(t, runs[i], segments[i].Run)
			}

			// map invariant: contiguous, starts at 0, ends at len(text)
			if len(segments) > 0 {
				assert.Equal(t, 0, segments[0].Start)
				assert.Equal(t, len(text), segments[len(segments)-1].End)
				for i := 1; i < len(segments); i++ {
					assert.Equal(t, segments[i-1].End, segments[i].Start)
				}
			}
		})
	}
}

func TestCovered(t *testing.T) {
	doc := document.New()
	a := &document.Run{Text: "aa"}
	empty := &document.Run{Text: ""}
	b := &document.Run{Text: "bb"}
	p := doc.AddParagraph(a, empty, b)
	_, segments := Build(p)

	tests := []struct {
		name       string
		start, end int
		wantRuns   []*document.Run
	}{
		{"inside_first", 0, 1, []*document.Run{a}},
		{"spanning_both", 1, 3, []*document.Run{a, b}},
		{"zero_width_range", 2, 2, nil},
		{"zero_width_range_inside_run", 1, 1, nil},
		{"full_range_skips_zero_width", 0, 4, []*document.Run{a, b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covered := Covered(segments, tt.start, tt.end)
			require.Len(t, covered, len(tt.wantRuns))
			for i, r := range tt.wantRuns {
				assert.Same(t, r, covered[i].Run)
			}
		})
	}
}

func TestResolveHyperlink(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		wantID string
		wantOK bool
	}{
		{"all_same", []string{"rId1", "rId1"}, "rId1", true},
		{"single_wrapped", []string{"rId2"}, "rId2", true},
		{"mixed_wrapped_and_plain", []string{"rId1", ""}, "", false},
		{"two_distinct_hyperlinks", []string{"rId1", "rId2"}, "", false},
		{"none_wrapped", []string{"", ""}, "", false},
		{"no_coverage", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New()
			runs := make([]*document.Run, len(tt.ids))
			for i, id := range tt.ids {
				runs[i] = &document.Run{Text: "x", HyperlinkID: id}
			}
			p := doc.AddParagraph(runs...)
			_, segments := Build(p)

			id, ok := ResolveHyperlink(Covered(segments, 0, len(tt.ids)))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
