package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joined(p *Paragraph) string {
	var out string
	for _, r := range p.Runs() {
		out += r.Text
	}
	return out
}

func TestParagraph_SplitRun(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		offset    int
		wantLeft  string
		wantRight string
		wantError bool
	}{
		{
			name:      "middle_split",
			text:      "Hello World",
			offset:    5,
			wantLeft:  "Hello",
			wantRight: " World",
		},
		{
			name:      "offset_zero_rejected",
			text:      "Hello",
			offset:    0,
			wantError: true,
		},
		{
			name:      "offset_at_end_rejected",
			text:      "Hello",
			offset:    5,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New()
			run := &Run{Text: tt.text, Formatting: Style{"b": "1"}, HyperlinkID: "rId3"}
			p := doc.AddParagraph(run)

			right, err := p.SplitRun(run, tt.offset)
			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.text, run.Text)
				assert.Equal(t, 1, p.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLeft, run.Text)
			assert.Equal(t, tt.wantRight, right.Text)
			assert.Equal(t, 2, p.Len())
			assert.True(t, p.Modified())

			// identity of the left part is preserved
			assert.Same(t, run, p.Runs()[0])

			// formatting is cloned, hyperlink membership carried over
			assert.Equal(t, Style{"b": "1"}, right.Formatting)
			run.Formatting.(Style)["b"] = "0"
			assert.Equal(t, Style{"b": "1"}, right.Formatting, "clone must be independent")
			assert.Equal(t, "rId3", right.HyperlinkID)
		})
	}
}

func TestParagraph_InsertDelete(t *testing.T) {
	doc := New()
	a := &Run{Text: "a"}
	c := &Run{Text: "c"}
	p := doc.AddParagraph(a, c)

	b := &Run{Text: "b"}
	require.NoError(t, p.InsertRun(1, b))
	assert.Equal(t, "abc", joined(p))

	require.NoError(t, p.DeleteRun(a))
	assert.Equal(t, "bc", joined(p))

	require.Error(t, p.DeleteRun(a), "deleting twice must fail")
	require.Error(t, p.InsertRun(7, b))
}

func TestParagraph_HyperlinkWrap(t *testing.T) {
	doc := New()
	run := &Run{Text: "link text"}
	p := doc.AddParagraph(run)

	id := doc.AddHyperlink("https://example.com")
	p.WrapHyperlink(run, id)
	assert.Equal(t, id, run.HyperlinkID)

	url, ok := doc.HyperlinkURL(id)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	p.UnwrapHyperlink(run)
	assert.Empty(t, run.HyperlinkID)
}

func TestDocument_AddHyperlink(t *testing.T) {
	doc := New()
	doc.RegisterHyperlink("rId1", "https://a.example")
	doc.ReserveRelID("rId2") // e.g. an image relationship

	// reuses the existing relationship for the same target
	assert.Equal(t, "rId1", doc.AddHyperlink("https://a.example"))

	// skips reserved ids when allocating
	id := doc.AddHyperlink("https://b.example")
	assert.Equal(t, "rId3", id)

	require.NoError(t, doc.SetHyperlinkURL(id, "https://c.example"))
	url, _ := doc.HyperlinkURL(id)
	assert.Equal(t, "https://c.example", url)

	require.Error(t, doc.SetHyperlinkURL("rId99", "x"))
}

func TestRun_Snapshot(t *testing.T) {
	run := &Run{Text: "t", Formatting: Style{"i": "1"}, HyperlinkID: "rId5"}
	snap := run.Snapshot()

	run.Text = "changed"
	run.Formatting.(Style)["i"] = "0"

	assert.Equal(t, "t", snap.Text)
	assert.Equal(t, Style{"i": "1"}, snap.Formatting)
	assert.Equal(t, "rId5", snap.HyperlinkID)
}
