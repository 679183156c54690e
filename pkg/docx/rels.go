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
	"encoding/xml"
	"sort"

	"gitlab.com/tozd/go/errors"
)

const (
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

	relsHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// 📋 relationshipList models word/_rels/document.xml.rels: a flat list of
// relationships, of which the hyperlink-typed ones are the interesting part.
type relationshipList struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func parseRelationships(data []byte) (*relationshipList, error) {
	var rl relationshipList
	if err := xml.Unmarshal(data, &rl); err != nil {
		return nil, errors.Errorf("%w: parsing relationships: %w", ErrIO, err)
	}
	for i, it := range rl.Items {
		if it.ID == "" {
			return nil, errors.Errorf("%w: relationship %d has no Id", ErrIO, i)
		}
	}
	// marshalling would duplicate the namespace if XMLName kept it
	rl.XMLName = xml.Name{Local: "Relationships"}
	if rl.Xmlns == "" {
		rl.Xmlns = nsRelationships
	}
	return &rl, nil
}

// relsXML serializes the relationship table with hyperlink targets synced
// from the document: retargeted relationships are updated in place, newly
// allocated ids are appended.
func (f *File) relsXML() ([]byte, error) {
	table := f.doc.Hyperlinks()

	seen := make(map[string]bool, len(f.rels.Items))
	for i := range f.rels.Items {
		it := &f.rels.Items[i]
		if it.Type != relTypeHyperlink {
			continue
		}
		seen[it.ID] = true
		if url, ok := table[it.ID]; ok {
			it.Target = url
		}
	}

	var added []string
	for id := range table {
		if !seen[id] {
			added = append(added, id)
		}
	}
	sort.Strings(added)
	for _, id := range added {
		f.rels.Items = append(f.rels.Items, relationship{
			ID:         id,
			Type:       relTypeHyperlink,
			Target:     table[id],
			TargetMode: "External",
		})
	}

	body, err := xml.Marshal(f.rels)
	if err != nil {
		return nil, errors.Errorf("%w: serializing relationships: %w", ErrIO, err)
	}
	return append([]byte(relsHeader), body...), nil
}
