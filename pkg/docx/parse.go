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
	"fmt"
	"io"
	"strings"

	"github.com/walteh/docxsr/pkg/document"
	"gitlab.com/tozd/go/errors"
)

const (
	nsWordML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRelRef = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// isWordML matches an element of the WordprocessingML main namespace. When a
// paragraph fragment is re-parsed without its root namespace declarations,
// the decoder reports the bare prefix instead of the resolved URL; the
// conventional prefix is accepted for that case.
func isWordML(n xml.Name, local string) bool {
	return n.Local == local && (n.Space == nsWordML || n.Space == "w")
}

// byteRange is a half-open byte span inside word/document.xml.
type byteRange struct {
	start int
	end   int
}

// 🔍 scanParagraphs returns the byte ranges of every innermost w:p element,
// in document order. A paragraph hosting nested paragraphs (text boxes) is
// skipped in favor of the nested ones, so the returned ranges never overlap.
func scanParagraphs(data []byte) ([]byteRange, error) {
	type frame struct {
		isPara bool
		start  int64
		nested bool
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []frame
	var spans []byteRange

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("%w: scanning document.xml: %w", ErrIO, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			isPara := isWordML(t.Name, "p")
			if isPara {
				for i := range stack {
					if stack[i].isPara {
						stack[i].nested = true
					}
				}
			}
			stack = append(stack, frame{isPara: isPara, start: before})
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.Errorf("%w: unbalanced element in document.xml", ErrIO)
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.isPara && !f.nested {
				spans = append(spans, byteRange{start: int(f.start), end: int(dec.InputOffset())})
			}
		}
	}
	return spans, nil
}

// splitTag splits a raw start tag into its element name and its verbatim
// attribute text (leading whitespace included).
func splitTag(raw string) (name, attrs string) {
	raw = strings.TrimPrefix(raw, "<")
	if strings.HasSuffix(raw, "/>") {
		raw = raw[:len(raw)-2]
	} else {
		raw = strings.TrimSuffix(raw, ">")
	}
	i := strings.IndexAny(raw, " \t\r\n")
	if i < 0 {
		return raw, ""
	}
	return raw[:i], strings.TrimRight(raw[i:], " \t\r\n")
}

// relIDAttr returns the relationship reference of a hyperlink start tag,
// empty for anchor-only hyperlinks.
func relIDAttr(el xml.StartElement) string {
	for _, a := range el.Attr {
		if a.Name.Local == "id" && (a.Name.Space == nsRelRef || a.Name.Space == "r") {
			return a.Value
		}
	}
	return ""
}

// rawElement skips the already-consumed start element's content and returns
// the element's verbatim bytes.
func rawElement(dec *xml.Decoder, frag []byte, start int64) (string, error) {
	if err := dec.Skip(); err != nil {
		return "", errors.Errorf("%w: skipping element: %w", ErrIO, err)
	}
	return string(frag[start:dec.InputOffset()]), nil
}

// elementText concatenates the character data of the current element,
// skipping nested markup, and consumes its end tag.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", errors.Errorf("%w: reading text element: %w", ErrIO, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", errors.Errorf("%w: skipping nested markup: %w", ErrIO, err)
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// nextAnchorID allocates a pseudo id for an anchor-only hyperlink. The id
// carries no URL and never reaches the relationship table; it only keeps the
// wrapping intact through edits.
func (f *File) nextAnchorID() string {
	f.anchorSeq++
	return fmt.Sprintf("_anchor%d", f.anchorSeq)
}

// 📖 parseParagraph decomposes one innermost w:p fragment into model runs.
// Every w:t becomes an editable run; all other markup is preserved verbatim
// as zero-width runs.
func (f *File) parseParagraph(frag []byte) (openTag, closeTag string, runs []*document.Run, err error) {
	dec := xml.NewDecoder(bytes.NewReader(frag))

	tok, err := dec.Token()
	if err != nil {
		return "", "", nil, errors.Errorf("%w: parsing paragraph: %w", ErrIO, err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok || !isWordML(start.Name, "p") {
		return "", "", nil, errors.Errorf("%w: paragraph fragment does not start with w:p", ErrIO)
	}
	name, attrs := splitTag(string(frag[:dec.InputOffset()]))
	openTag = "<" + name + attrs + ">"
	closeTag = "</" + name + ">"

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return openTag, closeTag, runs, nil
		}
		if err != nil {
			return "", "", nil, errors.Errorf("%w: parsing paragraph: %w", ErrIO, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "hyperlink"):
				_, hlAttrs := splitTag(string(frag[before:dec.InputOffset()]))
				relID := relIDAttr(t)
				if relID == "" {
					relID = f.nextAnchorID()
				}
				f.hlAttrs[relID] = hlAttrs
				inner, err := f.parseHyperlink(dec, frag, relID)
				if err != nil {
					return "", "", nil, err
				}
				runs = append(runs, inner...)
			case isWordML(t.Name, "r"):
				_, runAttrs := splitTag(string(frag[before:dec.InputOffset()]))
				inner, err := parseRun(dec, frag, runAttrs, "")
				if err != nil {
					return "", "", nil, err
				}
				runs = append(runs, inner...)
			default:
				raw, err := rawElement(dec, frag, before)
				if err != nil {
					return "", "", nil, err
				}
				runs = append(runs, rawRun(raw, ""))
			}
		case xml.EndElement:
			// the paragraph's own close tag; keep it verbatim unless the
			// element was self-closing
			if raw := string(frag[before:dec.InputOffset()]); raw != "" {
				closeTag = raw
			}
			return openTag, closeTag, runs, nil
		default:
			if raw := string(frag[before:dec.InputOffset()]); raw != "" {
				runs = append(runs, rawRun(raw, ""))
			}
		}
	}
}

// parseHyperlink decomposes the content of a w:hyperlink element, tagging
// every produced run with the hyperlink's relationship id.
func (f *File) parseHyperlink(dec *xml.Decoder, frag []byte, relID string) ([]*document.Run, error) {
	var runs []*document.Run
	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Errorf("%w: parsing hyperlink: %w", ErrIO, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if isWordML(t.Name, "r") {
				_, runAttrs := splitTag(string(frag[before:dec.InputOffset()]))
				inner, err := parseRun(dec, frag, runAttrs, relID)
				if err != nil {
					return nil, err
				}
				runs = append(runs, inner...)
				continue
			}
			raw, err := rawElement(dec, frag, before)
			if err != nil {
				return nil, err
			}
			runs = append(runs, rawRun(raw, relID))
		case xml.EndElement:
			return runs, nil
		default:
			if raw := string(frag[before:dec.InputOffset()]); raw != "" {
				runs = append(runs, rawRun(raw, relID))
			}
		}
	}
}

// parseRun decomposes one w:r element. Each contained w:t yields an editable
// run; any other content child yields a zero-width run reproducing the
// original markup inside its own w:r wrapper.
func parseRun(dec *xml.Decoder, frag []byte, runAttrs, relID string) ([]*document.Run, error) {
	var props string
	var runs []*document.Run
	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Errorf("%w: parsing run: %w", ErrIO, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWordML(t.Name, "rPr"):
				raw, err := rawElement(dec, frag, before)
				if err != nil {
					return nil, err
				}
				props = raw
			case isWordML(t.Name, "t"):
				text, err := elementText(dec)
				if err != nil {
					return nil, err
				}
				runs = append(runs, &document.Run{
					Text:        text,
					HyperlinkID: relID,
					Formatting:  &runFormat{runAttrs: runAttrs, props: props},
				})
			default:
				raw, err := rawElement(dec, frag, before)
				if err != nil {
					return nil, err
				}
				runs = append(runs, &document.Run{
					HyperlinkID: relID,
					Formatting:  &runFormat{runAttrs: runAttrs, props: props, raw: raw},
				})
			}
		case xml.EndElement:
			if len(runs) == 0 {
				// a run with properties but no content still round-trips
				runs = append(runs, &document.Run{
					HyperlinkID: relID,
					Formatting:  &runFormat{runAttrs: runAttrs, props: props},
				})
			}
			return runs, nil
		}
	}
}

func rawRun(raw, relID string) *document.Run {
	return &document.Run{
		HyperlinkID: relID,
		Formatting:  &runFormat{raw: raw, block: true},
	}
}
