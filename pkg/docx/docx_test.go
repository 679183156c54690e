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

package docx_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docxsr/pkg/document"
	"github.com/walteh/docxsr/pkg/docx"
	"github.com/walteh/docxsr/pkg/engine"
	"github.com/walteh/docxsr/pkg/operation"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const relsFixture = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://Example.COM/Path" TargetMode="External"/>` +
	`</Relationships>`

func wrapBody(body string) string {
	return xmlHeader +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `</w:body></w:document>`
}

func buildContainer(t *testing.T, docXML, rels string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct{ name, data string }{
		{"[Content_Types].xml", xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", docXML},
		{"word/_rels/document.xml.rels", rels},
	} {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func entryData(t *testing.T, container []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func paragraphText(p *document.Paragraph) string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestLoad_ParagraphsAndHyperlinks(t *testing.T) {
	body := `<w:p><w:r><w:t>This sho</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>rt exam</w:t></w:r><w:r><w:t>ple.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>visit </w:t></w:r><w:hyperlink r:id="rId2" w:history="1"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>Example Site</w:t></w:r></w:hyperlink></w:p>`
	f, err := docx.Load(buildContainer(t, wrapBody(body), relsFixture), "fixture.docx")
	require.NoError(t, err)

	paragraphs := f.Document().Paragraphs()
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "This short example.", paragraphText(paragraphs[0]))
	assert.Equal(t, "visit Example Site", paragraphText(paragraphs[1]))

	// hyperlink membership follows the w:hyperlink wrapper
	runs := paragraphs[1].Runs()
	require.Len(t, runs, 2)
	assert.Empty(t, runs[0].HyperlinkID)
	assert.Equal(t, "rId2", runs[1].HyperlinkID)

	url, ok := f.Document().HyperlinkURL("rId2")
	require.True(t, ok)
	assert.Equal(t, "https://Example.COM/Path", url)

	// non-hyperlink relationship ids are reserved, not registered
	_, ok = f.Document().HyperlinkURL("rId1")
	assert.False(t, ok)
}

func TestLoad_MissingEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(wrapBody("")))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = docx.Load(buf.Bytes(), "broken.docx")
	require.Error(t, err)
	require.ErrorIs(t, err, docx.ErrIO)
	assert.Contains(t, err.Error(), "document.xml.rels")
}

func TestLoad_InnermostParagraphs(t *testing.T) {
	// a paragraph hosting a text-box paragraph is not indexed itself
	body := `<w:p><w:r><w:drawing><w:txbxContent><w:p><w:r><w:t>boxed</w:t></w:r></w:p></w:txbxContent></w:drawing></w:r></w:p>` +
		`<w:p><w:r><w:t>plain</w:t></w:r></w:p>`
	f, err := docx.Load(buildContainer(t, wrapBody(body), relsFixture), "fixture.docx")
	require.NoError(t, err)

	paragraphs := f.Document().Paragraphs()
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "boxed", paragraphText(paragraphs[0]))
	assert.Equal(t, "plain", paragraphText(paragraphs[1]))
}

func TestBytes_NoOpIsByteIdentical(t *testing.T) {
	docXML := wrapBody(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>This short example.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">trailing </w:t></w:r></w:p>`)
	f, err := docx.Load(buildContainer(t, docXML, relsFixture), "fixture.docx")
	require.NoError(t, err)

	out, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, docXML, entryData(t, out, "word/document.xml"))
}

func TestBytes_SplicesOnlyModifiedParagraphs(t *testing.T) {
	untouched := `<w:p><w:r><w:rPr><w:i/></w:rPr><w:t>leave me alone</w:t></w:r></w:p>`
	docXML := wrapBody(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>This short example.</w:t></w:r><w:r><w:br/></w:r></w:p>` + untouched)
	f, err := docx.Load(buildContainer(t, docXML, relsFixture), "fixture.docx")
	require.NoError(t, err)

	op, err := operation.New(operation.Options{Document: f.Document()})
	require.NoError(t, err)
	_, err = op.SearchReplace(context.Background(), "short", "ultra long", 0)
	require.NoError(t, err)

	out, err := f.Bytes()
	require.NoError(t, err)
	rewritten := entryData(t, out, "word/document.xml")

	assert.Contains(t, rewritten, untouched)
	assert.Contains(t, rewritten, `<w:t xml:space="preserve">This ultra long example.</w:t>`)
	// non-text markup of the modified paragraph survives the rewrite
	assert.Contains(t, rewritten, `<w:pPr><w:jc w:val="center"/></w:pPr>`)
	assert.Contains(t, rewritten, `<w:br/>`)
	assert.NotContains(t, rewritten, "This short example.")

	// the rewritten container still parses to the same logical text
	f2, err := docx.Load(out, "roundtrip.docx")
	require.NoError(t, err)
	paragraphs := f2.Document().Paragraphs()
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "This ultra long example.", paragraphText(paragraphs[0]))
	assert.Equal(t, "leave me alone", paragraphText(paragraphs[1]))
}

func TestBytes_EscapesReplacementText(t *testing.T) {
	docXML := wrapBody(`<w:p><w:r><w:t>plain</w:t></w:r></w:p>`)
	f, err := docx.Load(buildContainer(t, docXML, relsFixture), "fixture.docx")
	require.NoError(t, err)

	op, err := operation.New(operation.Options{Document: f.Document()})
	require.NoError(t, err)
	_, err = op.SearchReplace(context.Background(), "plain", `a <b> & "c"`, 0)
	require.NoError(t, err)

	out, err := f.Bytes()
	require.NoError(t, err)
	rewritten := entryData(t, out, "word/document.xml")
	assert.Contains(t, rewritten, "a &lt;b&gt; &amp;")

	f2, err := docx.Load(out, "roundtrip.docx")
	require.NoError(t, err)
	assert.Equal(t, `a <b> & "c"`, paragraphText(f2.Document().Paragraphs()[0]))
}

func TestHyperlink_RetargetInPlace(t *testing.T) {
	body := `<w:p><w:r><w:t>visit </w:t></w:r><w:hyperlink r:id="rId2" w:history="1"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>Example Site</w:t></w:r></w:hyperlink></w:p>`
	f, err := docx.Load(buildContainer(t, wrapBody(body), relsFixture), "fixture.docx")
	require.NoError(t, err)

	op, err := operation.New(operation.Options{Document: f.Document()})
	require.NoError(t, err)
	re, err := op.Compile(`Example Site`, false)
	require.NoError(t, err)
	matches, err := op.SearchParagraphs(context.Background(), re)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "https://Example.COM/Path", matches[0].HyperlinkURL)

	_, err = op.ReplaceAll(context.Background(), matches, engine.SwapCase())
	require.NoError(t, err)

	out, err := f.Bytes()
	require.NoError(t, err)

	rewritten := entryData(t, out, "word/document.xml")
	// original wrapper attributes survive the regroup
	assert.Contains(t, rewritten, `<w:hyperlink r:id="rId2" w:history="1">`)
	assert.Contains(t, rewritten, `<w:rStyle w:val="Hyperlink"/>`)
	assert.Contains(t, rewritten, "eXAMPLE sITE")

	rels := entryData(t, out, "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Target="HTTPS://eXAMPLE.com/pATH"`)
	assert.NotContains(t, rels, `Target="https://Example.COM/Path"`)
}

func TestHyperlink_SetDirectiveCreatesRelationship(t *testing.T) {
	docXML := wrapBody(`<w:p><w:r><w:t>see the docs here</w:t></w:r></w:p>`)
	f, err := docx.Load(buildContainer(t, docXML, relsFixture), "fixture.docx")
	require.NoError(t, err)

	op, err := operation.New(operation.Options{Document: f.Document()})
	require.NoError(t, err)
	re, err := op.Compile(`docs`, false)
	require.NoError(t, err)
	matches, err := op.SearchParagraphs(context.Background(), re)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	link := engine.StrategyFunc(func(matched, _ string, _ []document.RunSnapshot) (engine.Result, error) {
		return engine.Result{Text: matched, Directive: engine.DirectiveSet, URL: "https://docs.example.com"}, nil
	})
	_, err = op.ReplaceAll(context.Background(), matches, link)
	require.NoError(t, err)

	out, err := f.Bytes()
	require.NoError(t, err)

	rels := entryData(t, out, "word/_rels/document.xml.rels")
	assert.Contains(t, rels, `Target="https://docs.example.com"`)
	assert.Contains(t, rels, `TargetMode="External"`)

	// rId1 and rId2 are taken, the fresh relationship gets rId3
	rewritten := entryData(t, out, "word/document.xml")
	assert.Contains(t, rewritten, `<w:hyperlink r:id="rId3">`)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(in, buildContainer(t, wrapBody(`<w:p><w:r><w:t>hello</w:t></w:r></w:p>`), relsFixture), 0o644))

	f, err := docx.Open(in)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report-new.docx"), f.DefaultOutputName())

	// default output name, fresh file
	written, err := f.Save(context.Background(), "", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-new.docx"), written)

	// existing files are protected
	_, err = f.Save(context.Background(), written, false)
	require.Error(t, err)
	require.ErrorIs(t, err, docx.ErrIO)

	// the input itself is protected even via an explicit path
	_, err = f.Save(context.Background(), in, false)
	require.Error(t, err)

	// overwrite opt-in
	_, err = f.Save(context.Background(), written, true)
	require.NoError(t, err)

	reloaded, err := docx.Open(written)
	require.NoError(t, err)
	assert.Equal(t, "hello", paragraphText(reloaded.Document().Paragraphs()[0]))
}
