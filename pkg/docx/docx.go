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
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/docxsr/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// ErrIO marks container-level failures: unreadable archives, malformed XML
// parts, refused writes.
var ErrIO = errors.Base("container operation failed")

const (
	documentEntry = "word/document.xml"
	relsEntry     = "word/_rels/document.xml.rels"
)

// zipEntry keeps a container member verbatim so save can reproduce entries
// this package never interprets.
type zipEntry struct {
	name string
	data []byte
}

// paragraphSpan ties a model paragraph back to its byte range inside
// word/document.xml.
type paragraphSpan struct {
	start     int
	end       int
	openTag   string
	closeTag  string
	paragraph *document.Paragraph
}

// 📦 File is an opened .docx container bound to its document model.
type File struct {
	name      string
	entries   []zipEntry
	docXML    []byte
	rels      *relationshipList
	hlAttrs   map[string]string // hyperlink id → raw start-tag attributes
	anchorSeq int
	doc       *document.Document
	spans     []*paragraphSpan
}

// 🏭 Open reads a .docx file from disk.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	return Load(data, path)
}

// Load parses an in-memory .docx container. The name is used for logging and
// output-name derivation only.
func Load(data []byte, name string) (*File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("%w: opening archive %s: %w", ErrIO, name, err)
	}

	f := &File{
		name:    name,
		hlAttrs: make(map[string]string),
		doc:     document.New(),
	}

	var relsData []byte
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, errors.Errorf("%w: opening entry %s: %w", ErrIO, zf.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Errorf("%w: reading entry %s: %w", ErrIO, zf.Name, err)
		}
		f.entries = append(f.entries, zipEntry{name: zf.Name, data: b})
		switch zf.Name {
		case documentEntry:
			f.docXML = b
		case relsEntry:
			relsData = b
		}
	}
	if f.docXML == nil {
		return nil, errors.Errorf("%w: %s has no %s", ErrIO, name, documentEntry)
	}
	if relsData == nil {
		return nil, errors.Errorf("%w: %s has no %s", ErrIO, name, relsEntry)
	}

	f.rels, err = parseRelationships(relsData)
	if err != nil {
		return nil, err
	}
	for _, it := range f.rels.Items {
		if it.Type == relTypeHyperlink {
			f.doc.RegisterHyperlink(it.ID, it.Target)
		} else {
			f.doc.ReserveRelID(it.ID)
		}
	}

	ranges, err := scanParagraphs(f.docXML)
	if err != nil {
		return nil, err
	}
	sort.Slice(ranges, func(a, b int) bool { return ranges[a].start < ranges[b].start })

	for _, br := range ranges {
		openTag, closeTag, runs, err := f.parseParagraph(f.docXML[br.start:br.end])
		if err != nil {
			return nil, err
		}
		p := f.doc.AddParagraph(runs...)
		f.spans = append(f.spans, &paragraphSpan{
			start:     br.start,
			end:       br.end,
			openTag:   openTag,
			closeTag:  closeTag,
			paragraph: p,
		})
	}
	return f, nil
}

// Document returns the document model backing the container.
func (f *File) Document() *document.Document {
	return f.doc
}

// Name returns the name the container was opened under.
func (f *File) Name() string {
	return f.name
}

// DefaultOutputName derives the output path used when none is given:
// <base>-new<ext> next to the input.
func (f *File) DefaultOutputName() string {
	ext := filepath.Ext(f.name)
	base := strings.TrimSuffix(filepath.Base(f.name), ext)
	return filepath.Join(filepath.Dir(f.name), base+"-new"+ext)
}

// 📦 Bytes rebuilds the container: document.xml and the relationship table
// are regenerated, every other entry is copied verbatim.
func (f *File) Bytes() ([]byte, error) {
	docXML := f.documentXML()
	relsXML, err := f.relsXML()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range f.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, errors.Errorf("%w: creating entry %s: %w", ErrIO, e.name, err)
		}
		data := e.data
		switch e.name {
		case documentEntry:
			data = docXML
		case relsEntry:
			data = relsXML
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.Errorf("%w: writing entry %s: %w", ErrIO, e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Errorf("%w: finalizing archive: %w", ErrIO, err)
	}
	return buf.Bytes(), nil
}

// 💾 Save writes the container to path (DefaultOutputName when empty). An
// existing file, the input included, is never clobbered unless overwrite is
// set. The path actually written is returned.
func (f *File) Save(ctx context.Context, path string, overwrite bool) (string, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		path = f.DefaultOutputName()
	}
	if _, err := os.Stat(path); err == nil || path == f.name {
		if !overwrite {
			return "", errors.Errorf("%w: %s already exists, pass overwrite to replace it", ErrIO, path)
		}
		logger.Warn().Str("path", path).Msg("overwriting existing file")
	}

	data, err := f.Bytes()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}

	logger.Info().Str("path", path).Msg("document written")
	return path, nil
}
