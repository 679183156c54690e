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

package docx

import (
	"bytes"
	"encoding/xml"

	"github.com/walteh/docxsr/pkg/document"
)

// 🖨️ documentXML rebuilds word/document.xml, splicing re-serialized markup
// over the byte range of every modified paragraph. Untouched paragraphs and
// everything between paragraphs are emitted byte-identical.
func (f *File) documentXML() []byte {
	var buf bytes.Buffer
	buf.Grow(len(f.docXML))
	prev := 0
	for _, sp := range f.spans {
		buf.Write(f.docXML[prev:sp.start])
		if sp.paragraph.Modified() {
			f.writeParagraph(&buf, sp)
		} else {
			buf.Write(f.docXML[sp.start:sp.end])
		}
		prev = sp.end
	}
	buf.Write(f.docXML[prev:])
	return buf.Bytes()
}

// writeParagraph serializes one modified paragraph, regrouping consecutive
// runs sharing a hyperlink id under one w:hyperlink wrapper carrying the
// original attributes.
func (f *File) writeParagraph(buf *bytes.Buffer, sp *paragraphSpan) {
	buf.WriteString(sp.openTag)
	runs := sp.paragraph.Runs()
	for i := 0; i < len(runs); {
		id := runs[i].HyperlinkID
		j := i
		for j < len(runs) && runs[j].HyperlinkID == id {
			j++
		}
		if id != "" {
			attrs, ok := f.hlAttrs[id]
			if !ok {
				attrs = ` r:id="` + id + `"`
			}
			buf.WriteString("<w:hyperlink" + attrs + ">")
		}
		for _, r := range runs[i:j] {
			writeRun(buf, r)
		}
		if id != "" {
			buf.WriteString("</w:hyperlink>")
		}
		i = j
	}
	buf.WriteString(sp.closeTag)
}

// writeRun serializes a single run. Preserved raw markup is emitted verbatim;
// editable text goes back inside a w:r carrying the original attributes and
// run properties.
func writeRun(buf *bytes.Buffer, r *document.Run) {
	fm, _ := r.Formatting.(*runFormat)
	if fm == nil {
		fm = &runFormat{}
	}

	if r.Text == "" && fm.raw != "" {
		if fm.block {
			buf.WriteString(fm.raw)
			return
		}
		buf.WriteString("<w:r" + fm.runAttrs + ">")
		buf.WriteString(fm.props)
		buf.WriteString(fm.raw)
		buf.WriteString("</w:r>")
		return
	}

	buf.WriteString("<w:r" + fm.runAttrs + ">")
	buf.WriteString(fm.props)
	if r.Text != "" {
		// xml:space keeps leading/trailing whitespace significant
		buf.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(buf, []byte(r.Text))
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r>")
}
